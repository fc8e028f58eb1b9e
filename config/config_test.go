package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"crusadermem/game_phase"
	"crusadermem/process"
	"crusadermem/process_codec"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
process_name: Stronghold_Crusader_Extreme.exe
poll_interval: 500ms
phase:
  menu_texture: shc_back.tgx
blocks:
  - name: map_settings
    address: 0x1A2B3C
    stat_offsets:
      - {name: map_name, offset: 0x0, type: string}
      - {name: start_year, offset: 0x104, type: int}
      - {name: start_month, offset: 0x108, type: byte}
  - name: lord_basic
    address: 0x115FCB8
    stride: 0x39F4
    count: 8
    stat_offsets:
      - {name: active, offset: 0, type: boolean}
      - {name: team, offset: 4, type: word}
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "Stronghold_Crusader_Extreme.exe", cfg.ProcessName)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	require.Len(t, cfg.Blocks, 2)

	settings := cfg.Blocks[0]
	assert.Equal(t, uint64(0x1A2B3C), settings.Address)
	assert.Equal(t, 1, settings.Count, "count defaults to one entity")
	assert.Equal(t, process_codec.FixedText, settings.StatOffsets[0].Type)
	assert.Equal(t, process_codec.Int32, settings.StatOffsets[1].Type)
	assert.Equal(t, uint64(0x104), settings.StatOffsets[1].Offset)

	lords, ok := cfg.Block("lord_basic")
	require.True(t, ok)
	assert.Equal(t, uint64(0x39F4), lords.Stride)
	assert.Equal(t, 8, lords.Count)
	assert.Equal(t, process_codec.Bool, lords.StatOffsets[0].Type)
	assert.Equal(t, process_codec.Word, lords.StatOffsets[1].Type)

	_, ok = cfg.Block("missing")
	assert.False(t, ok)
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, DefaultProcessName, cfg.ProcessName)
	assert.Equal(t, DefaultPollInterval, cfg.PollInterval)
	assert.Equal(t, game_phase.DefaultAddresses(), cfg.PhaseAddresses())
}

func TestPhaseAddresses_Overrides(t *testing.T) {
	cfg, err := Parse([]byte("phase: {year_address: 0x10, texture_address: 0x20, menu_texture: menu.tgx}"))
	require.NoError(t, err)

	assert.Equal(t, game_phase.Addresses{
		Year:        process.ProcessMemoryAddress(0x10),
		Texture:     process.ProcessMemoryAddress(0x20),
		MenuTexture: "menu.tgx",
	}, cfg.PhaseAddresses())
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"unknown type":    "blocks: [{name: a, address: 1, stat_offsets: [{name: x, offset: 0, type: qword}]}]",
		"missing stride":  "blocks: [{name: a, address: 1, count: 2, stat_offsets: [{name: x, offset: 0, type: int}]}]",
		"no stats":        "blocks: [{name: a, address: 1}]",
		"unnamed block":   "blocks: [{address: 1, stat_offsets: [{name: x, offset: 0, type: int}]}]",
		"duplicate stat":  "blocks: [{name: a, address: 1, stat_offsets: [{name: x, offset: 0, type: int}, {name: x, offset: 4, type: int}]}]",
		"duplicate block": "blocks: [{name: a, stat_offsets: [{name: x, type: int}]}, {name: a, stat_offsets: [{name: x, type: int}]}]",
		"negative count":  "blocks: [{name: a, count: -1, stat_offsets: [{name: x, type: int}]}]",
		"offset wraps":    "blocks: [{name: a, address: 0x10, stat_offsets: [{name: x, offset: 0xFFFFFFFFFFFFFFFE, type: word}]}]",
		"stride wraps":    "blocks: [{name: a, count: 3, stride: 0x8000000000000000, stat_offsets: [{name: x, type: int}]}]",
		"empty process":   "process_name: ''",
		"zero interval":   "poll_interval: 0s",
		"bad interval":    "poll_interval: soon",
		"not yaml at all": "blocks: [",
	}
	for name, input := range cases {
		_, err := Parse([]byte(input))
		assert.Error(t, err, name)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crusader.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Blocks, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
