// Package watch samples the game on a fixed cadence: the phase on every tick,
// and the configured stat blocks while a match or its statistics are showing.
package watch

import (
	"context"
	"time"

	"crusadermem/config"
	"crusadermem/game_phase"
	"crusadermem/stat_block"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// Classifier reports the current game phase of a named process
type Classifier interface {
	Classify(name string) (game_phase.Phase, error)
}

// Tick is the outcome of one sample. When Err is set the sample stopped at
// the failing read; nothing is retried.
type Tick struct {
	Time   time.Time
	Phase  game_phase.Phase
	Blocks map[string][]stat_block.Field
	Err    error
}

// Watcher polls one process
type Watcher struct {
	cfg        *config.Config
	classifier Classifier
	reader     stat_block.ChunkReader
	log        *logger.Logger
	now        func() time.Time
}

// New creates a Watcher sampling the process named in cfg
func New(cfg *config.Config, classifier Classifier, reader stat_block.ChunkReader) *Watcher {
	return &Watcher{
		cfg:        cfg,
		classifier: classifier,
		reader:     reader,
		log:        logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "watch")),
		now:        time.Now,
	}
}

// Poll takes a single sample
func (w *Watcher) Poll() Tick {
	tick := Tick{Time: w.now()}

	tick.Phase, tick.Err = w.classifier.Classify(w.cfg.ProcessName)
	if tick.Err != nil {
		return tick
	}

	if tick.Phase != game_phase.PhaseGame && tick.Phase != game_phase.PhaseStats {
		return tick
	}

	tick.Blocks = make(map[string][]stat_block.Field, len(w.cfg.Blocks))
	for _, block := range w.cfg.Blocks {
		fields, err := stat_block.Read(w.reader, w.cfg.ProcessName, block)
		if err != nil {
			tick.Err = err
			return tick
		}
		tick.Blocks[block.Name] = fields
	}
	return tick
}

// Run polls immediately and then every poll interval, delivering each Tick
// on ticks, until ctx is done. It returns ctx.Err().
func (w *Watcher) Run(ctx context.Context, ticks chan<- Tick) error {
	w.log.Infoln("Watching", w.cfg.ProcessName, "every", w.cfg.PollInterval)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		tick := w.Poll()
		if tick.Err != nil {
			w.log.Debugln("Sample failed:", tick.Err)
		}

		select {
		case ticks <- tick:
		case <-ctx.Done():
			return ctx.Err()
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			w.log.Infoln("Stopped watching", w.cfg.ProcessName)
			return ctx.Err()
		}
	}
}
