// Deezer API implementation of [ArtworkResolver]
//
// Response fields based on https://developers.deezer.com/api
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/unilink/internal/progress"
	"github.com/desertthunder/unilink/internal/shared"
)

const deezerBaseURL = "https://api.deezer.com"

// deezerError is returned with a 200 status when an item does not exist.
type deezerError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// DeezerItem holds the artwork fields shared by tracks, albums, artists and playlists.
type DeezerItem struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Name       string `json:"name"`
	CoverXL    string `json:"cover_xl"`
	CoverBig   string `json:"cover_big"`
	PictureXL  string `json:"picture_xl"`
	PictureBig string `json:"picture_big"`
	NbTracks   int    `json:"nb_tracks"`
	Album      *struct {
		CoverXL  string `json:"cover_xl"`
		CoverBig string `json:"cover_big"`
	} `json:"album"`
	Error *deezerError `json:"error"`
}

// artwork returns the largest image URL present on the item.
func (d DeezerItem) artwork() string {
	candidates := []string{d.CoverXL, d.PictureXL, d.CoverBig, d.PictureBig}
	if d.Album != nil {
		candidates = append(candidates, d.Album.CoverXL, d.Album.CoverBig)
	}
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

// DeezerService resolves artwork through the public Deezer API.
type DeezerService struct {
	api *APIService
}

// NewDeezerService creates a Deezer resolver. An empty baseURL uses the public API.
func NewDeezerService(baseURL string, client *http.Client) *DeezerService {
	if baseURL == "" {
		baseURL = deezerBaseURL
	}
	return &DeezerService{api: NewAPIService(baseURL, client)}
}

func (d *DeezerService) Name() string {
	return "Deezer"
}

// Item fetches a track, album, artist or playlist.
func (d *DeezerService) Item(ctx context.Context, ct progress.ContentType, id string) (*DeezerItem, error) {
	resp, err := d.api.Get(ctx, fmt.Sprintf("/%s/%s", ct, url.PathEscape(id)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: deezer status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var item DeezerItem
	if err := resp.Decode(&item); err != nil {
		return nil, err
	}
	if item.Error != nil {
		return nil, fmt.Errorf("%w: deezer %s %s: %s", shared.ErrNotFound, ct, id, item.Error.Message)
	}
	return &item, nil
}

// ResolveArtwork returns the extra-large cover or picture for a Deezer link.
func (d *DeezerService) ResolveArtwork(ctx context.Context, link Link) (string, error) {
	if link.Platform != Deezer {
		return "", fmt.Errorf("%w: %s link passed to deezer", shared.ErrInvalidArgument, link.Platform)
	}

	item, err := d.Item(ctx, link.ContentType, link.ID)
	if err != nil {
		return "", err
	}

	if art := item.artwork(); art != "" {
		return art, nil
	}
	return "", fmt.Errorf("%w: deezer %s %s", shared.ErrArtworkNotFound, link.ContentType, link.ID)
}
