// Package audio reads and writes the album-level ID3 tags of MP3 files.
//
// # ID3 Tags
//
// ReadAlbumTag returns the lead artist (TPE1), album artist (TPE2) and album
// title (TALB) of a file:
//
//	tag, err := audio.ReadAlbumTag("01 - Lanquidity.mp3")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(tag.DisplayArtist(), tag.Album)
//
// WriteAlbumTag sets the same frames, creating an ID3v2.4 tag if needed.
package audio
