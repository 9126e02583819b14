// Package models defines persistent entities and persistence interfaces for unilink.
//
// The package contains:
//   - [PaletteRecord] : an extracted [palette.ColorPalette] keyed by its source image URL
//   - [Model] : the base interface every persistent entity implements (ID, timestamps, validation)
//   - [Repository] : standard CRUD operations for database access
//
// Fallback palettes are represented by [SourceFallback] but are never written by the palette store.
package models
