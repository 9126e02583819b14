// Spotify API implementation of [ArtworkResolver]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/unilink/internal/progress"
	"github.com/desertthunder/unilink/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Album SpotifyAlbum `json:"album"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	TotalTracks int            `json:"total_tracks"`
	Images      []SpotifyImage `json:"images"`
}

// SpotifyPlaylist represents the playlist fields needed for artwork.
type SpotifyPlaylist struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Tracks struct {
		Total int `json:"total"`
	} `json:"tracks"`
	Images []SpotifyImage `json:"images"`
}

// SpotifyOpts configures [NewSpotifyService]. TokenURL and BaseURL default to Spotify's endpoints.
type SpotifyOpts struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	BaseURL      string
	HTTPClient   *http.Client // used for the token request and, wrapped, for API calls
}

// SpotifyService resolves artwork through the Spotify Web API.
//
// It authenticates as the application with the OAuth2 client credentials flow. The token source caches the
// app token and fetches a new one when it expires.
type SpotifyService struct {
	baseURL    string
	httpClient *http.Client
}

// NewSpotifyService creates a Spotify resolver from app credentials.
func NewSpotifyService(opts SpotifyOpts) (*SpotifyService, error) {
	if opts.ClientID == "" || opts.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret are required", shared.ErrMissingCredentials)
	}

	tokenURL := opts.TokenURL
	if tokenURL == "" {
		tokenURL = spotifyTokenURL
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}

	config := &clientcredentials.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		TokenURL:     tokenURL,
	}

	ctx := context.Background()
	if opts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
	}

	return &SpotifyService{baseURL: baseURL, httpClient: config.Client(ctx)}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// doRequest performs an authenticated GET request to the Spotify API.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: spotify item %s", shared.ErrNotFound, endpoint)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: spotify status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Track retrieves a single track by ID.
func (s *SpotifyService) Track(ctx context.Context, trackID string) (*SpotifyTrack, error) {
	var track SpotifyTrack
	if err := s.doRequest(ctx, "/tracks/"+url.PathEscape(trackID), &track); err != nil {
		return nil, err
	}
	return &track, nil
}

// Album retrieves a single album by ID.
func (s *SpotifyService) Album(ctx context.Context, albumID string) (*SpotifyAlbum, error) {
	var album SpotifyAlbum
	if err := s.doRequest(ctx, "/albums/"+url.PathEscape(albumID), &album); err != nil {
		return nil, err
	}
	return &album, nil
}

// Artist retrieves a single artist by ID.
func (s *SpotifyService) Artist(ctx context.Context, artistID string) (*SpotifyArtist, error) {
	var artist SpotifyArtist
	if err := s.doRequest(ctx, "/artists/"+url.PathEscape(artistID), &artist); err != nil {
		return nil, err
	}
	return &artist, nil
}

// Playlist retrieves a playlist's name, track total and images.
func (s *SpotifyService) Playlist(ctx context.Context, playlistID string) (*SpotifyPlaylist, error) {
	var playlist SpotifyPlaylist
	endpoint := "/playlists/" + url.PathEscape(playlistID) + "?fields=" + url.QueryEscape("id,name,tracks.total,images")
	if err := s.doRequest(ctx, endpoint, &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// ResolveArtwork returns the largest image for a Spotify link.
func (s *SpotifyService) ResolveArtwork(ctx context.Context, link Link) (string, error) {
	if link.Platform != Spotify {
		return "", fmt.Errorf("%w: %s link passed to spotify", shared.ErrInvalidArgument, link.Platform)
	}

	var images []SpotifyImage
	switch link.ContentType {
	case progress.Track:
		track, err := s.Track(ctx, link.ID)
		if err != nil {
			return "", err
		}
		images = track.Album.Images
	case progress.Album:
		album, err := s.Album(ctx, link.ID)
		if err != nil {
			return "", err
		}
		images = album.Images
	case progress.Artist:
		artist, err := s.Artist(ctx, link.ID)
		if err != nil {
			return "", err
		}
		images = artist.Images
	case progress.Playlist:
		playlist, err := s.Playlist(ctx, link.ID)
		if err != nil {
			return "", err
		}
		images = playlist.Images
	default:
		return "", fmt.Errorf("%w: %s", shared.ErrUnsupportedLink, link.ContentType)
	}

	img, ok := largestImage(images)
	if !ok {
		return "", fmt.Errorf("%w: spotify %s %s", shared.ErrArtworkNotFound, link.ContentType, link.ID)
	}
	return img.URL, nil
}

// largestImage picks the widest image. Playlist images can report zero sizes, in which case the first wins.
func largestImage(images []SpotifyImage) (SpotifyImage, bool) {
	var (
		best  SpotifyImage
		found bool
	)
	for _, img := range images {
		if img.URL == "" {
			continue
		}
		if !found || img.Width*img.Height > best.Width*best.Height {
			best, found = img, true
		}
	}
	return best, found
}
