package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/unilink/internal/progress"
	"github.com/desertthunder/unilink/internal/services"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgStateUpdate MsgKind = iota
	MsgSimulationDone
	MsgConversionDone
)

type conversionOutcome struct {
	result *services.Conversion
	err    error
}

// stateUpdateMsg is the constructor for [MsgStateUpdate]
func stateUpdateMsg(st progress.ProgressState) Msg {
	return Msg{kind: MsgStateUpdate, data: st}
}

// simulationDoneMsg is the constructor for [MsgSimulationDone]
func simulationDoneMsg(st progress.ProgressState) Msg {
	return Msg{kind: MsgSimulationDone, data: st}
}

// conversionDoneMsg is the constructor for [MsgConversionDone]
func conversionDoneMsg(result *services.Conversion, err error) Msg {
	return Msg{kind: MsgConversionDone, data: conversionOutcome{result: result, err: err}}
}
