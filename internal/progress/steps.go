package progress

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/desertthunder/unilink/internal/shared"
)

// ContentType is the kind of music link being converted.
type ContentType string

const (
	Track    ContentType = "track"
	Album    ContentType = "album"
	Artist   ContentType = "artist"
	Playlist ContentType = "playlist"
)

// ContentTypes lists every supported [ContentType].
func ContentTypes() []ContentType {
	return []ContentType{Track, Album, Artist, Playlist}
}

// ParseContentType validates a user-supplied content type, ignoring case and surrounding space.
func ParseContentType(s string) (ContentType, error) {
	ct := ContentType(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(ContentTypes(), ct) {
		return ct, nil
	}
	return "", fmt.Errorf("%w: unknown content type %q (want track, album, artist or playlist)", shared.ErrInvalidArgument, s)
}

// Step is one scripted stage of a conversion.
type Step struct {
	Name     string
	Duration time.Duration
}

var stepTables = map[ContentType][]Step{
	Track: {
		{"Analyzing link", 600 * time.Millisecond},
		{"Fetching track details", 900 * time.Millisecond},
		{"Searching platforms", 1400 * time.Millisecond},
		{"Generating universal link", 700 * time.Millisecond},
	},
	Album: {
		{"Analyzing link", 600 * time.Millisecond},
		{"Fetching album details", 900 * time.Millisecond},
		{"Matching album across platforms", 1500 * time.Millisecond},
		{"Verifying tracklist", 1100 * time.Millisecond},
		{"Generating universal link", 700 * time.Millisecond},
	},
	Artist: {
		{"Analyzing link", 600 * time.Millisecond},
		{"Fetching artist profile", 1000 * time.Millisecond},
		{"Finding artist on platforms", 1300 * time.Millisecond},
		{"Generating universal link", 700 * time.Millisecond},
	},
	Playlist: {
		{"Analyzing link", 600 * time.Millisecond},
		{"Fetching playlist", 1000 * time.Millisecond},
		{"Matching tracks", 2200 * time.Millisecond},
		{"Syncing artwork", 1200 * time.Millisecond},
		{"Generating universal link", 800 * time.Millisecond},
	},
}

// Steps returns a copy of the step table for ct. Unknown types get the track table.
func Steps(ct ContentType) []Step {
	table, ok := stepTables[ct]
	if !ok {
		table = stepTables[Track]
	}
	return slices.Clone(table)
}

// TotalDuration sums the configured durations of steps.
func TotalDuration(steps []Step) time.Duration {
	var total time.Duration
	for _, s := range steps {
		total += s.Duration
	}
	return total
}
