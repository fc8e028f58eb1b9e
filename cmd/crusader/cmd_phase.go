package main

import (
	"fmt"

	"crusadermem/game_phase"
	"crusadermem/process"
	"crusadermem/process_codec"

	"github.com/spf13/cobra"
)

// phaseCmd classifies the game phase once
var phaseCmd = &cobra.Command{
	Use:   "phase",
	Short: "Print the current game phase",
	Long: `Print whether the game is in the lobby, in a match or showing the
post-match statistics.

A single sample has no history, so the statistics screen is only recognised
by "crusader watch", which remembers the previous phase.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(opts)
		if err != nil {
			return err
		}

		phase, err := classifyOnce(s)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), phase)
		return nil
	},
}

func classifyOnce(s *session) (game_phase.Phase, error) {
	machine := game_phase.NewMachine(s.reader, s.cfg.PhaseAddresses())
	return machine.Classify(s.cfg.ProcessName)
}

var (
	valueAddress uint64
	valueType    string
)

// valueCmd reads a single typed value
var valueCmd = &cobra.Command{
	Use:   "value",
	Short: "Read one typed value at an absolute address",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(opts)
		if err != nil {
			return err
		}

		v, err := readValue(s, valueAddress, valueType)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	},
}

func readValue(s *session, addr uint64, tag string) (process_codec.Value, error) {
	t, err := process_codec.ParseType(tag)
	if err != nil {
		return process_codec.Value{}, err
	}
	return s.reader.Read(s.cfg.ProcessName, process.ProcessMemoryAddress(addr), t)
}

func init() {
	valueCmd.Flags().Uint64Var(&valueAddress, "addr", 0, "absolute address, decimal or 0x-prefixed")
	valueCmd.Flags().StringVarP(&valueType, "type", "t", "int", "value type: int, word, byte, bool or string")
	_ = valueCmd.MarkFlagRequired("addr")
}
