package services

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/unilink/internal/progress"
	"github.com/desertthunder/unilink/internal/shared"
)

func TestResolverSet(t *testing.T) {
	ctx := context.Background()
	var seen []Link
	spotify := ArtworkResolverFunc(func(_ context.Context, link Link) (string, error) {
		seen = append(seen, link)
		return "https://i.scdn.co/image/" + link.ID, nil
	})

	set := NewResolverSet().Register(Spotify, spotify).Register(Deezer, nil)

	t.Run("dispatches by platform", func(t *testing.T) {
		got, err := set.ResolveArtwork(ctx, Link{Platform: Spotify, ContentType: progress.Album, ID: "a1"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "https://i.scdn.co/image/a1" {
			t.Errorf("unexpected artwork %s", got)
		}
		if len(seen) != 1 || seen[0].ID != "a1" {
			t.Errorf("expected resolver to see the link, got %+v", seen)
		}
	})

	t.Run("direct image passes through", func(t *testing.T) {
		raw := "https://example.com/cover.png"
		got, err := set.ResolveArtwork(ctx, Link{Raw: raw, Platform: DirectImage})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != raw {
			t.Errorf("expected %s, got %s", raw, got)
		}
	})

	t.Run("apple music is not implemented", func(t *testing.T) {
		_, err := set.ResolveArtwork(ctx, Link{Platform: AppleMusic, ContentType: progress.Album, ID: "1"})
		if !errors.Is(err, shared.ErrNotImplemented) {
			t.Errorf("expected ErrNotImplemented, got %v", err)
		}
	})

	t.Run("unregistered platform needs credentials", func(t *testing.T) {
		_, err := set.ResolveArtwork(ctx, Link{Platform: Deezer, ContentType: progress.Track, ID: "1"})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})
}
