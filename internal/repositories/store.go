package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/unilink/internal/models"
	"github.com/desertthunder/unilink/internal/palette"
	"github.com/desertthunder/unilink/internal/shared"
)

// PaletteStore is the persistent cache tier in front of palette extraction.
//
// Rows older than maxAge are treated as misses. Fallback palettes are never written, so a later retry can
// replace them with a real extraction.
type PaletteStore struct {
	repo   *PaletteRepository
	maxAge time.Duration
	now    func() time.Time
	logger *log.Logger
}

// StoreStats summarizes the persisted palettes.
type StoreStats struct {
	Total  int           `json:"total"`
	Stale  int           `json:"stale"`
	MaxAge time.Duration `json:"maxAge"`
}

// NewPaletteStore creates a store over repo. A zero maxAge never expires rows.
func NewPaletteStore(repo *PaletteRepository, maxAge time.Duration, logger *log.Logger) *PaletteStore {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &PaletteStore{repo: repo, maxAge: maxAge, now: time.Now, logger: logger}
}

// Lookup returns the stored palette for imageURL when one exists and is fresh.
func (s *PaletteStore) Lookup(imageURL string) (palette.ColorPalette, bool, error) {
	record, err := s.repo.GetByImageURL(imageURL)
	if errors.Is(err, shared.ErrNotFound) {
		return palette.ColorPalette{}, false, nil
	}
	if err != nil {
		return palette.ColorPalette{}, false, fmt.Errorf("failed to look up palette: %w", err)
	}

	if s.maxAge > 0 && record.Age(s.now()) > s.maxAge {
		s.logger.Debug("stored palette is stale", "url", imageURL, "updated", record.UpdatedAt())
		return palette.ColorPalette{}, false, nil
	}
	return record.Palette(), true, nil
}

// Save persists p for imageURL unless it is the fallback palette.
func (s *PaletteStore) Save(imageURL string, p palette.ColorPalette) error {
	if p.IsFallback() {
		s.logger.Debug("skipping fallback palette", "url", imageURL)
		return nil
	}

	if err := s.repo.Upsert(models.NewPaletteRecord(0, imageURL, p)); err != nil {
		return fmt.Errorf("failed to save palette: %w", err)
	}
	return nil
}

// Prune deletes rows older than maxAge and returns how many were removed.
func (s *PaletteStore) Prune(maxAge time.Duration) (int64, error) {
	if maxAge <= 0 {
		return 0, fmt.Errorf("%w: max age must be positive", shared.ErrInvalidArgument)
	}

	removed, err := s.repo.DeleteOlderThan(s.now().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	s.logger.Info("pruned stored palettes", "removed", removed, "max_age", maxAge)
	return removed, nil
}

// Stats counts stored rows and how many are past maxAge.
func (s *PaletteStore) Stats() (StoreStats, error) {
	records, err := s.repo.List(nil)
	if err != nil {
		return StoreStats{}, err
	}

	stats := StoreStats{Total: len(records), MaxAge: s.maxAge}
	if s.maxAge <= 0 {
		return stats, nil
	}

	now := s.now()
	for _, r := range records {
		if r.Age(now) > s.maxAge {
			stats.Stale++
		}
	}
	return stats, nil
}
