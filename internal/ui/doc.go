// Package ui implements the terminal interface for conversions using bubbletea's Elm architecture.
//
// [ConvertModel] renders a running [progress.Simulator]: a spinner with the status line, a gradient progress bar,
// the "Step n of m" label and, for playlists, the simulated match counter. The real conversion runs as a command
// beside it. When the simulator finishes the model shows the palette as lipgloss swatches.
//
// The model implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Simulator snapshots flow through the simulator's non-blocking update channel, one command per snapshot.
//
// [Swatches] is shared with the plain CLI output so both render palettes the same way.
package ui
