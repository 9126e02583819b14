// package services defines interface ArtworkResolver for interacting with music catalog HTTP APIs
//
// Spotify, Deezer
package services

import (
	"context"

	"github.com/desertthunder/unilink/internal/progress"
)

// Platform identifies where a link points.
type Platform string

const (
	Spotify     Platform = "spotify"
	AppleMusic  Platform = "apple"
	Deezer      Platform = "deezer"
	DirectImage Platform = "image"
)

// Link is a parsed music link.
type Link struct {
	Raw         string               `json:"raw"`
	Platform    Platform             `json:"platform"`
	ContentType progress.ContentType `json:"contentType"`
	ID          string               `json:"id,omitempty"`
}

// ArtworkResolver finds the cover image URL for a link.
type ArtworkResolver interface {
	ResolveArtwork(ctx context.Context, link Link) (string, error)
}

// ArtworkResolverFunc adapts a function to [ArtworkResolver].
type ArtworkResolverFunc func(ctx context.Context, link Link) (string, error)

func (f ArtworkResolverFunc) ResolveArtwork(ctx context.Context, link Link) (string, error) {
	return f(ctx, link)
}
