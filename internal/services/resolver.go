package services

import (
	"context"
	"fmt"

	"github.com/desertthunder/unilink/internal/shared"
)

// ResolverSet dispatches artwork resolution by platform.
type ResolverSet struct {
	resolvers map[Platform]ArtworkResolver
}

// NewResolverSet creates an empty set. Direct image links resolve without any registered resolver.
func NewResolverSet() *ResolverSet {
	return &ResolverSet{resolvers: make(map[Platform]ArtworkResolver)}
}

// Register sets the resolver for platform. A nil resolver is ignored.
func (r *ResolverSet) Register(platform Platform, resolver ArtworkResolver) *ResolverSet {
	if resolver != nil {
		r.resolvers[platform] = resolver
	}
	return r
}

func (r *ResolverSet) ResolveArtwork(ctx context.Context, link Link) (string, error) {
	switch link.Platform {
	case DirectImage:
		return link.Raw, nil
	case AppleMusic:
		return "", fmt.Errorf("%w: apple music artwork requires a MusicKit token", shared.ErrNotImplemented)
	}

	resolver, ok := r.resolvers[link.Platform]
	if !ok {
		return "", fmt.Errorf("%w: no resolver configured for %s", shared.ErrMissingCredentials, link.Platform)
	}
	return resolver.ResolveArtwork(ctx, link)
}
