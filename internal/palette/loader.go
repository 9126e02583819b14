package palette

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/desertthunder/unilink/internal/shared"
	_ "golang.org/x/image/webp"
)

// maxImageBytes bounds how much of a response body is decoded.
const maxImageBytes = 20 << 20

// Loader fetches and decodes an image. Implementations must honor ctx cancellation.
type Loader interface {
	Load(ctx context.Context, rawURL string) (image.Image, error)
}

// HTTPLoader loads http(s) URLs and data: URIs, plus file:// URLs when built with [AllowFiles].
type HTTPLoader struct {
	client    *http.Client
	allowFile bool
}

// LoaderOption configures an [HTTPLoader].
type LoaderOption func(*HTTPLoader)

// AllowFiles enables file:// URLs. Only local tools should use it; a server must not read its own disk for clients.
func AllowFiles() LoaderOption {
	return func(l *HTTPLoader) { l.allowFile = true }
}

// NewHTTPLoader creates a loader on client, or [http.DefaultClient] when nil.
func NewHTTPLoader(client *http.Client, opts ...LoaderOption) *HTTPLoader {
	if client == nil {
		client = http.DefaultClient
	}
	l := &HTTPLoader{client: client}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *HTTPLoader) Load(ctx context.Context, rawURL string) (image.Image, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	switch u.Scheme {
	case "http", "https":
		return l.fetch(ctx, u.String())
	case "data":
		return decodeDataURI(rawURL)
	case "file":
		if !l.allowFile {
			return nil, fmt.Errorf("%w: file urls are disabled", shared.ErrInvalidInput)
		}
		return decodeFile(ctx, u.Path)
	default:
		return nil, fmt.Errorf("%w: unsupported image scheme %q", shared.ErrInvalidInput, u.Scheme)
	}
}

func (l *HTTPLoader) fetch(ctx context.Context, target string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := l.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: image request returned %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// decodeDataURI handles "data:[<mediatype>][;base64],<data>".
func decodeDataURI(raw string) (image.Image, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(raw, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("%w: malformed data URI", shared.ErrInvalidInput)
	}

	var data []byte
	if strings.HasSuffix(meta, ";base64") {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
		data = b
	} else {
		s, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
		data = []byte(s)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

func decodeFile(ctx context.Context, path string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTimeout, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(io.LimitReader(f, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}
