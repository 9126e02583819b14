package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/unilink/internal/models"
	"github.com/desertthunder/unilink/internal/palette"
	"github.com/desertthunder/unilink/internal/shared"
)

const paletteColumns = `id, sequence, image_url, source, dominant, vibrant, muted, dark, light,
	complementary, analogous_a, analogous_b, confidence, created_at, updated_at`

// PaletteRepository implements models.Repository[*models.PaletteRecord].
//
// Timestamps are stored in UTC so that age comparisons happen in one zone.
type PaletteRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.PaletteRecord] = (*PaletteRepository)(nil)

// NewPaletteRepository creates a new PaletteRepository with the given database connection
func NewPaletteRepository(db *sql.DB) *PaletteRepository {
	return &PaletteRepository{db: db}
}

// Create inserts a new [models.PaletteRecord] with a generated ID and sequence
func (r *PaletteRepository) Create(record *models.PaletteRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "palettes")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	record.SetID(id)
	record.SetSequence(sequence)

	p := record.Palette()
	query := `INSERT INTO palettes (` + paletteColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.Exec(query,
		id,
		sequence,
		record.ImageURL(),
		string(record.Source()),
		p.Dominant,
		p.Vibrant,
		p.Muted,
		p.Dark,
		p.Light,
		p.Complementary,
		p.Analogous[0],
		p.Analogous[1],
		p.Confidence,
		record.CreatedAt().UTC(),
		record.UpdatedAt().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert palette: %w", err)
	}

	return nil
}

// Get retrieves a palette record by ID
func (r *PaletteRepository) Get(id string) (*models.PaletteRecord, error) {
	query := `SELECT ` + paletteColumns + ` FROM palettes WHERE id = ?`
	return r.scan(r.db.QueryRow(query, id))
}

// GetByImageURL retrieves the palette record stored for imageURL
func (r *PaletteRepository) GetByImageURL(imageURL string) (*models.PaletteRecord, error) {
	query := `SELECT ` + paletteColumns + ` FROM palettes WHERE image_url = ?`
	return r.scan(r.db.QueryRow(query, imageURL))
}

// Update replaces the stored palette and source of an existing record
func (r *PaletteRepository) Update(record *models.PaletteRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	record.SetUpdatedAt(now)

	p := record.Palette()
	query := `
		UPDATE palettes
		SET source = ?, dominant = ?, vibrant = ?, muted = ?, dark = ?, light = ?,
			complementary = ?, analogous_a = ?, analogous_b = ?, confidence = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		string(record.Source()),
		p.Dominant,
		p.Vibrant,
		p.Muted,
		p.Dark,
		p.Light,
		p.Complementary,
		p.Analogous[0],
		p.Analogous[1],
		p.Confidence,
		now,
		record.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update palette: %w", err)
	}

	return expectAffected(result, record.ID())
}

// Upsert updates the record stored for the same image URL, or creates it.
//
// On update the record takes the stored ID, sequence and creation time.
func (r *PaletteRepository) Upsert(record *models.PaletteRecord) error {
	existing, err := r.GetByImageURL(record.ImageURL())
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return r.Create(record)
	case err != nil:
		return err
	}

	record.SetID(existing.ID())
	record.SetSequence(existing.Sequence())
	record.SetCreatedAt(existing.CreatedAt())
	return r.Update(record)
}

// Delete removes a palette record by ID
func (r *PaletteRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM palettes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete palette: %w", err)
	}
	return expectAffected(result, id)
}

// DeleteOlderThan removes records last written before cutoff and returns how many were removed
func (r *PaletteRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM palettes WHERE updated_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune palettes: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}

// Count returns the number of stored palettes
func (r *PaletteRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM palettes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count palettes: %w", err)
	}
	return n, nil
}

// List retrieves palette records matching the given criteria ordered by sequence.
//
// Supported criteria: "source" (string or [models.PaletteSource]) and "limit" (int).
func (r *PaletteRepository) List(criteria map[string]any) ([]*models.PaletteRecord, error) {
	query := `SELECT ` + paletteColumns + ` FROM palettes WHERE 1 = 1`
	args := []any{}

	switch source := criteria["source"].(type) {
	case string:
		if source != "" {
			query += " AND source = ?"
			args = append(args, source)
		}
	case models.PaletteSource:
		query += " AND source = ?"
		args = append(args, string(source))
	}

	query += " ORDER BY sequence ASC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query palettes: %w", err)
	}
	defer rows.Close()

	var records []*models.PaletteRecord
	for rows.Next() {
		record, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scan reads one palette row from either [sql.Row] or [sql.Rows]
func (r *PaletteRepository) scan(row scanner) (*models.PaletteRecord, error) {
	var (
		id        string
		sequence  int
		imageURL  string
		source    string
		p         palette.ColorPalette
		createdAt time.Time
		updatedAt time.Time
	)

	err := row.Scan(
		&id, &sequence, &imageURL, &source,
		&p.Dominant, &p.Vibrant, &p.Muted, &p.Dark, &p.Light,
		&p.Complementary, &p.Analogous[0], &p.Analogous[1], &p.Confidence,
		&createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: palette", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan palette: %w", err)
	}

	record := models.NewPaletteRecord(sequence, imageURL, p)
	record.SetID(id)
	record.SetSource(models.PaletteSource(source))
	record.SetCreatedAt(createdAt)
	record.SetUpdatedAt(updatedAt)
	return record, nil
}

func expectAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: palette %s", shared.ErrNotFound, id)
	}
	return nil
}
