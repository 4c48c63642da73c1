// Package model defines the album identity used throughout bandcamp-mosaic.
//
// # Album Identity
//
// AlbumIdentity pairs the raw artist/album text with a normalized form used
// for de-duplication:
//
//	id, err := model.NewAlbumIdentity("Miles Davis", "Kind of Blue")
//	fmt.Println(id.Query()) // "Miles Davis Kind of Blue"
//	fmt.Println(id.Key())   // "miles_davis_kind_of_blue"
//
// # Normalization
//
// Normalize is for comparison only, Slugify is for file names:
//
//	model.Normalize(" Kind  of BLUE ") // "kind of blue"
//	model.Slugify("Kind of Blue!")     // "kind_of_blue"
//
// Dedupe keeps the first of any identities that normalize identically.
package model
