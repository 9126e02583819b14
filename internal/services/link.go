package services

import (
	"fmt"
	"net/url"
	"path"
	"slices"
	"strings"

	"github.com/desertthunder/unilink/internal/progress"
	"github.com/desertthunder/unilink/internal/shared"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

var imageHosts = []string{"i.scdn.co", "mosaic.scdn.co", "image-cdn-ak.spotifycdn.com", "cdn-images.dzcdn.net", "e-cdns-images.dzcdn.net"}

// ParseLink recognizes a Spotify, Apple Music or Deezer share link, or a direct image URL.
func ParseLink(raw string) (Link, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Link{}, fmt.Errorf("%w: link is empty", shared.ErrMissingArgument)
	}

	if rest, ok := strings.CutPrefix(raw, "spotify:"); ok {
		return parseSpotifyURI(raw, rest)
	}
	if strings.HasPrefix(raw, "data:image/") {
		return Link{Raw: raw, Platform: DirectImage, ContentType: progress.Track}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Link{}, fmt.Errorf("%w: %v", shared.ErrUnsupportedLink, err)
	}
	if u.Scheme == "file" {
		return Link{Raw: raw, Platform: DirectImage, ContentType: progress.Track}, nil
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Link{}, fmt.Errorf("%w: %s", shared.ErrUnsupportedLink, raw)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	segments := splitPath(u.Path)

	switch {
	case host == "open.spotify.com" || host == "play.spotify.com":
		return parseSegments(raw, Spotify, segments, map[string]progress.ContentType{
			"track": progress.Track, "album": progress.Album, "artist": progress.Artist, "playlist": progress.Playlist,
		})
	case host == "music.apple.com" || host == "itunes.apple.com":
		return parseApple(raw, u, segments)
	case host == "deezer.com":
		return parseSegments(raw, Deezer, segments, map[string]progress.ContentType{
			"track": progress.Track, "album": progress.Album, "artist": progress.Artist, "playlist": progress.Playlist,
		})
	case isImageURL(host, u.Path):
		return Link{Raw: raw, Platform: DirectImage, ContentType: progress.Track}, nil
	}

	return Link{}, fmt.Errorf("%w: %s", shared.ErrUnsupportedLink, raw)
}

func splitPath(p string) []string {
	return slices.DeleteFunc(strings.Split(p, "/"), func(s string) bool { return s == "" })
}

// parseSegments finds the first known kind segment and takes the segment after it as the ID.
// Locale prefixes such as /intl-de/ or /us/ are skipped.
func parseSegments(raw string, platform Platform, segments []string, kinds map[string]progress.ContentType) (Link, error) {
	for i, seg := range segments {
		ct, ok := kinds[strings.ToLower(seg)]
		if !ok || i+1 >= len(segments) {
			continue
		}
		return Link{Raw: raw, Platform: platform, ContentType: ct, ID: segments[i+1]}, nil
	}
	return Link{}, fmt.Errorf("%w: no %s item in %s", shared.ErrUnsupportedLink, platform, raw)
}

func parseSpotifyURI(raw, rest string) (Link, error) {
	kind, id, ok := strings.Cut(rest, ":")
	if !ok || id == "" {
		return Link{}, fmt.Errorf("%w: %s", shared.ErrUnsupportedLink, raw)
	}

	ct, err := progress.ParseContentType(kind)
	if err != nil {
		return Link{}, fmt.Errorf("%w: %s", shared.ErrUnsupportedLink, raw)
	}
	return Link{Raw: raw, Platform: Spotify, ContentType: ct, ID: id}, nil
}

// parseApple handles /{storefront}/{album|playlist|artist|song}/{slug}/{id}. An album link with ?i= is a track.
func parseApple(raw string, u *url.URL, segments []string) (Link, error) {
	kinds := map[string]progress.ContentType{
		"album": progress.Album, "playlist": progress.Playlist, "artist": progress.Artist, "song": progress.Track,
	}

	for i, seg := range segments {
		ct, ok := kinds[seg]
		if !ok || i+1 >= len(segments) {
			continue
		}

		link := Link{Raw: raw, Platform: AppleMusic, ContentType: ct, ID: segments[len(segments)-1]}
		if trackID := u.Query().Get("i"); ct == progress.Album && trackID != "" {
			link.ContentType = progress.Track
			link.ID = trackID
		}
		return link, nil
	}
	return Link{}, fmt.Errorf("%w: no apple music item in %s", shared.ErrUnsupportedLink, raw)
}

func isImageURL(host, p string) bool {
	if slices.Contains(imageHosts, host) || strings.HasSuffix(host, ".mzstatic.com") {
		return true
	}
	return slices.Contains(imageExtensions, strings.ToLower(path.Ext(p)))
}
