package main

import (
	"fmt"

	"crusadermem/config"
	"crusadermem/process"
	"crusadermem/process_blob"
	"crusadermem/process_native"
	"crusadermem/process_reader"
)

type options struct {
	configPath  string
	processName string
	replayDir   string
}

// session is what every command works with: the configuration and a reader
// bound to either the native backend or a replayed snapshot
type session struct {
	cfg    *config.Config
	helper process.ProcessHelper
	reader *process_reader.Reader
}

func openSession(o options) (*session, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		cfg, err = config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
	}
	if o.processName != "" {
		cfg.ProcessName = o.processName
	}

	var helper process.ProcessHelper
	if o.replayDir != "" {
		dump, err := process_blob.LoadDump(o.replayDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load replay: %w", err)
		}
		log.Infoln("Replaying", dump.Name, "from", o.replayDir)

		// a snapshot answers to the name it was taken under
		if o.processName == "" {
			cfg.ProcessName = dump.Name
		}
		helper = process_blob.NewBackend(dump)
	} else {
		var err error
		helper, err = process_native.NewHelper()
		if err != nil {
			return nil, err
		}
	}

	return newSession(cfg, helper), nil
}

func newSession(cfg *config.Config, helper process.ProcessHelper) *session {
	return &session{
		cfg:    cfg,
		helper: helper,
		reader: process_reader.New(helper),
	}
}
