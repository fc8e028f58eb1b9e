// Package game_phase classifies what the observed game is doing: sitting in
// the lobby, playing a match, or showing the post-match statistics screen.
package game_phase

import (
	"fmt"
	"sync"

	"crusadermem/process"
	"crusadermem/process_codec"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// Phase is the classified state of the game
type Phase int

const (
	// PhaseUnknown is the state of a Machine that has not classified anything yet
	PhaseUnknown Phase = iota
	PhaseLobby
	PhaseGame
	PhaseStats
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseGame:
		return "game"
	case PhaseStats:
		return "stats"
	}
	return "unknown"
}

const (
	// DefaultYearAddress holds the in-game year; zero outside of a match
	DefaultYearAddress = process.ProcessMemoryAddress(0x24BA938)

	// DefaultTextureAddress holds the name of the current background texture
	DefaultTextureAddress = process.ProcessMemoryAddress(0x1311607)

	// DefaultMenuTexture is the background shown on menu screens
	DefaultMenuTexture = "shc_back.tgx"
)

// Addresses locates the two readings a Machine classifies from
type Addresses struct {
	Year        process.ProcessMemoryAddress
	Texture     process.ProcessMemoryAddress
	MenuTexture string
}

// DefaultAddresses returns the locations used by Stronghold Crusader Extreme
func DefaultAddresses() Addresses {
	return Addresses{
		Year:        DefaultYearAddress,
		Texture:     DefaultTextureAddress,
		MenuTexture: DefaultMenuTexture,
	}
}

// ValueReader reads a single typed value from a named process
type ValueReader interface {
	Read(name string, addr process.ProcessMemoryAddress, t process_codec.SemanticType) (process_codec.Value, error)
}

// Next is the transition function. A year of zero means the lobby; a nonzero
// year with anything but the menu texture means a match is running; otherwise
// the statistics screen is up. Statistics are only reported directly after a
// match or while they are already showing; otherwise the lobby is reported.
// Stats therefore persists only through an unbroken run of Stats readings.
func Next(isYearZero, inGame bool, previous Phase) Phase {
	switch {
	case isYearZero:
		return PhaseLobby
	case inGame:
		return PhaseGame
	case previous == PhaseGame || previous == PhaseStats:
		return PhaseStats
	}
	return PhaseLobby
}

// Machine classifies the phase of one game process, remembering the phase it
// reported last. Classify may be called from multiple goroutines.
type Machine struct {
	reader    ValueReader
	addresses Addresses
	log       *logger.Logger

	mu       sync.Mutex
	previous Phase
}

// NewMachine creates a Machine reading through reader at addresses
func NewMachine(reader ValueReader, addresses Addresses) *Machine {
	return &Machine{
		reader:    reader,
		addresses: addresses,
		log:       logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "game-phase")),
	}
}

// Previous returns the phase reported by the last successful Classify
func (m *Machine) Previous() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.previous
}

// Classify reads the year and texture of the named process and returns the
// current phase. On a read failure the error is returned and the remembered
// phase is left unchanged.
func (m *Machine) Classify(name string) (Phase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	year, err := m.reader.Read(name, m.addresses.Year, process_codec.Int32)
	if err != nil {
		return PhaseUnknown, fmt.Errorf("read year: %w", err)
	}

	texture, err := m.reader.Read(name, m.addresses.Texture, process_codec.FixedText)
	if err != nil {
		return PhaseUnknown, fmt.Errorf("read texture: %w", err)
	}

	isYearZero := year.Uint32() == 0
	inGame := !isYearZero && texture.Text() != m.addresses.MenuTexture

	phase := Next(isYearZero, inGame, m.previous)
	if phase != m.previous {
		m.log.Infoln("Phase changed from", m.previous, "to", phase)
	}
	m.previous = phase

	return phase, nil
}
