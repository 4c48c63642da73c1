package audio

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAlbumTag_DisplayArtist(t *testing.T) {
	tests := []struct {
		name string
		tag  AlbumTag
		want string
	}{
		{"album artist wins", AlbumTag{Artist: "Guest", AlbumArtist: "Various Artists"}, "Various Artists"},
		{"lead artist fallback", AlbumTag{Artist: "Sun Ra"}, "Sun Ra"},
		{"nothing", AlbumTag{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tag.DisplayArtist(); got != tt.want {
				t.Errorf("DisplayArtist() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadAlbumTag_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "01.mp3")
	if err := os.WriteFile(path, []byte("not an id3 header, just audio frames"), 0644); err != nil {
		t.Fatal(err)
	}

	want := AlbumTag{Artist: "Björk", AlbumArtist: "Björk", Album: "Homogenic"}
	if err := WriteAlbumTag(path, want); err != nil {
		t.Fatalf("WriteAlbumTag() error = %v", err)
	}

	got, err := ReadAlbumTag(path)
	if err != nil {
		t.Fatalf("ReadAlbumTag() error = %v", err)
	}
	if got != want {
		t.Errorf("ReadAlbumTag() = %+v, want %+v", got, want)
	}
}

func TestReadAlbumTag_Untagged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "01.mp3")
	if err := os.WriteFile(path, []byte("no tag here"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadAlbumTag(path)
	if err != nil {
		t.Fatalf("ReadAlbumTag() error = %v", err)
	}
	if got != (AlbumTag{}) {
		t.Errorf("ReadAlbumTag() = %+v, want empty", got)
	}
}

func TestReadAlbumTag_MissingFile(t *testing.T) {
	if _, err := ReadAlbumTag(filepath.Join(t.TempDir(), "missing.mp3")); err == nil {
		t.Error("ReadAlbumTag() expected error for missing file")
	}
}
