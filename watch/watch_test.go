package watch

import (
	"context"
	"errors"
	"testing"
	"time"

	"crusadermem/config"
	"crusadermem/game_phase"
	"crusadermem/process"
	"crusadermem/process_blob"
	"crusadermem/process_codec"
	"crusadermem/process_reader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const gameName = "Stronghold_Crusader_Extreme.exe"

// scripted returns phases from a list, then repeats the last one
type scripted struct {
	phases []game_phase.Phase
	err    error
}

func (s *scripted) Classify(name string) (game_phase.Phase, error) {
	if s.err != nil {
		return game_phase.PhaseUnknown, s.err
	}
	phase := s.phases[0]
	if len(s.phases) > 1 {
		s.phases = s.phases[1:]
	}
	return phase, nil
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.PollInterval = time.Millisecond
	cfg.Blocks = []config.Block{{
		Name:    "map_settings",
		Address: 0x3000,
		Count:   1,
		StatOffsets: []config.StatOffset{
			{Name: "start_year", Offset: 0, Type: process_codec.Int32},
		},
	}}
	return cfg
}

func testBackend(t *testing.T) *process_blob.Backend {
	dump := process_blob.NewProcessDump(77, gameName)
	require.NoError(t, dump.AddRegion(0x3000, []byte{0xB5, 0x04, 0, 0}))
	return process_blob.NewBackend(dump)
}

func TestPoll_ReadsBlocksOnlyDuringMatch(t *testing.T) {
	backend := testBackend(t)
	classifier := &scripted{phases: []game_phase.Phase{game_phase.PhaseLobby, game_phase.PhaseGame, game_phase.PhaseStats}}
	w := New(testConfig(), classifier, process_reader.New(backend))

	tick := w.Poll()
	require.NoError(t, tick.Err)
	assert.Equal(t, game_phase.PhaseLobby, tick.Phase)
	assert.Nil(t, tick.Blocks)
	assert.Empty(t, backend.Reads())

	for _, want := range []game_phase.Phase{game_phase.PhaseGame, game_phase.PhaseStats} {
		tick = w.Poll()
		require.NoError(t, tick.Err)
		assert.Equal(t, want, tick.Phase)
		require.Len(t, tick.Blocks["map_settings"], 1)
		assert.Equal(t, uint32(1205), tick.Blocks["map_settings"][0].Value.Uint32())
	}
}

func TestPoll_Failures(t *testing.T) {
	backend := testBackend(t)
	boom := errors.New("boom")

	w := New(testConfig(), &scripted{err: boom}, process_reader.New(backend))
	tick := w.Poll()
	assert.ErrorIs(t, tick.Err, boom)

	backend.FailRead(errors.New("process exited"))
	w = New(testConfig(), &scripted{phases: []game_phase.Phase{game_phase.PhaseGame}}, process_reader.New(backend))
	tick = w.Poll()
	assert.Equal(t, game_phase.PhaseGame, tick.Phase)
	assert.ErrorIs(t, tick.Err, process.ErrMemoryReadFailed)
}

func TestRun_StopsOnCancel(t *testing.T) {
	backend := testBackend(t)
	w := New(testConfig(), &scripted{phases: []game_phase.Phase{game_phase.PhaseGame}}, process_reader.New(backend))
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	ticks := make(chan Tick)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, ticks)
	}()

	for i := 0; i < 3; i++ {
		tick := <-ticks
		require.NoError(t, tick.Err)
		assert.Equal(t, game_phase.PhaseGame, tick.Phase)
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, 0, backend.OpenHandles())
}

func TestRun_CancelWhileBlockedOnSend(t *testing.T) {
	backend := testBackend(t)
	w := New(testConfig(), &scripted{phases: []game_phase.Phase{game_phase.PhaseLobby}}, process_reader.New(backend))
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// Nobody receives: Run must still return once the context expires
	err := w.Run(ctx, make(chan Tick))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
