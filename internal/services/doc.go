// Package services resolves music links to album artwork and turns artwork into palettes.
//
// # Links
//
// [ParseLink] recognizes Spotify, Apple Music and Deezer share links plus direct image URLs, and infers the
// [progress.ContentType] used to pick the simulator's step table.
//
// # Artwork Resolution
//
// Every provider implements [ArtworkResolver]:
//   - [SpotifyService] : Spotify Web API with an app token from the OAuth2 client credentials flow
//   - [DeezerService] : the public Deezer API, no authentication, via [APIService]
//
// [ResolverSet] dispatches by platform. Direct image URLs pass straight through and Apple Music returns
// [shared.ErrNotImplemented] since MusicKit tokens are not supported.
//
// # Conversion
//
// [ConversionService.Convert] parses a link, resolves its artwork and extracts the palette. Palettes are served
// from an in-memory TTL cache first, then from the persistent [PaletteStorer], and only then extracted.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrUnsupportedLink] : the link is not from a known platform
//   - [shared.ErrMissingCredentials] : no resolver is configured for the platform
//   - [shared.ErrAPIRequest] : HTTP request failed or returned a non-2xx status
//   - [shared.ErrArtworkNotFound] : the item exists but has no images
package services
