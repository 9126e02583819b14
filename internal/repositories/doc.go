// Package repositories implements SQLite persistence for unilink's palettes.
//
// Key Implementations:
//   - [PaletteRepository] : CRUD for [models.PaletteRecord] with image URL lookups, upserts and age-based pruning
//   - [PaletteStore] : the persistent cache tier in front of extraction, which never stores fallback palettes
//
// Sequence numbers provide stable, human-readable ordering (e.g., palette #15) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
