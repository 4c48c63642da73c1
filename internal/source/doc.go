// Package source reads the list of albums a mosaic is built from.
//
// Two sources are supported:
//   - a tab-separated export with Artist and Album header columns (ReadTSV)
//   - a directory of MP3 files, using their ID3 tags (ScanTags)
//
// Both return de-duplicated identities in order of first appearance:
//
//	ids, err := source.ReadTSVFile("library.tsv")
//	if errors.Is(err, source.ErrMissingColumns) {
//	    // not an album export
//	}
package source
