package services

import (
	"errors"
	"testing"

	"github.com/desertthunder/unilink/internal/progress"
	"github.com/desertthunder/unilink/internal/shared"
)

func TestParseLink(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		platform Platform
		ct       progress.ContentType
		id       string
	}{
		{"spotify track", "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC", Spotify, progress.Track, "4uLU6hMCjMI75M1A2tKUQC"},
		{"spotify album with query", "https://open.spotify.com/album/1DFixLWuPkv3KT3TnV35m3?si=abc", Spotify, progress.Album, "1DFixLWuPkv3KT3TnV35m3"},
		{"spotify locale prefix", "https://open.spotify.com/intl-de/artist/0OdUWJ0sBjDrqHygGUXeCF", Spotify, progress.Artist, "0OdUWJ0sBjDrqHygGUXeCF"},
		{"spotify playlist", "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M", Spotify, progress.Playlist, "37i9dQZF1DXcBWIGoYBM5M"},
		{"spotify uri", "spotify:album:1DFixLWuPkv3KT3TnV35m3", Spotify, progress.Album, "1DFixLWuPkv3KT3TnV35m3"},
		{"deezer track", "https://www.deezer.com/en/track/3135556", Deezer, progress.Track, "3135556"},
		{"deezer playlist", "https://deezer.com/playlist/908622995", Deezer, progress.Playlist, "908622995"},
		{"apple album", "https://music.apple.com/us/album/discovery/697194953", AppleMusic, progress.Album, "697194953"},
		{"apple album track", "https://music.apple.com/us/album/discovery/697194953?i=697195462", AppleMusic, progress.Track, "697195462"},
		{"apple song", "https://music.apple.com/gb/song/one-more-time/697195462", AppleMusic, progress.Track, "697195462"},
		{"image cdn", "https://i.scdn.co/image/ab67616d0000b273", DirectImage, progress.Track, ""},
		{"image extension", "https://example.com/covers/art.JPG", DirectImage, progress.Track, ""},
		{"data uri", "data:image/png;base64,AAAA", DirectImage, progress.Track, ""},
		{"file url", "file:///tmp/cover.png", DirectImage, progress.Track, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link, err := ParseLink("  " + tt.raw + " ")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if link.Platform != tt.platform {
				t.Errorf("expected platform %q, got %q", tt.platform, link.Platform)
			}
			if link.ContentType != tt.ct {
				t.Errorf("expected content type %q, got %q", tt.ct, link.ContentType)
			}
			if link.ID != tt.id {
				t.Errorf("expected id %q, got %q", tt.id, link.ID)
			}
			if link.Raw != tt.raw {
				t.Errorf("expected raw %q, got %q", tt.raw, link.Raw)
			}
		})
	}
}

func TestParseLinkErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"empty", "   ", shared.ErrMissingArgument},
		{"unknown host", "https://example.com/track/123", shared.ErrUnsupportedLink},
		{"spotify without id", "https://open.spotify.com/track", shared.ErrUnsupportedLink},
		{"spotify unknown kind", "https://open.spotify.com/show/abc", shared.ErrUnsupportedLink},
		{"spotify bad uri", "spotify:episode:abc", shared.ErrUnsupportedLink},
		{"spotify uri without id", "spotify:track", shared.ErrUnsupportedLink},
		{"apple without item", "https://music.apple.com/us/browse", shared.ErrUnsupportedLink},
		{"ftp scheme", "ftp://example.com/cover.png", shared.ErrUnsupportedLink},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLink(tt.raw)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
