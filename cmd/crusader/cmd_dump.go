package main

import (
	"fmt"

	"crusadermem/hexdump"
	"crusadermem/process"

	"github.com/spf13/cobra"
)

var (
	dumpAddress uint64
	dumpSize    uint64
	dumpBlock   string
	dumpPlain   bool
)

// dumpCmd prints a hex dump of a span
var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Hex dump a span of process memory",
	Long: `Hex dump --size bytes at --addr, or the span covered by a configured
block with its fields highlighted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(opts)
		if err != nil {
			return err
		}

		out, err := renderDump(s, dumpAddress, dumpSize, dumpBlock, !dumpPlain)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func renderDump(s *session, addr, size uint64, blockName string, color bool) (string, error) {
	span := region{Address: process.ProcessMemoryAddress(addr), Size: process.ProcessMemorySize(size)}

	var highlight []hexdump.Range
	if blockName != "" {
		block, ok := s.cfg.Block(blockName)
		if !ok {
			return "", fmt.Errorf("unknown block %q", blockName)
		}

		var fields []region
		span, fields = blockRegion(block)
		for _, f := range fields {
			highlight = append(highlight, hexdump.Range{Offset: uint64(f.Address), Size: uint64(f.Size)})
		}
	}

	data, err := s.reader.ReadSpan(s.cfg.ProcessName, span.Address, span.Size)
	if err != nil {
		return "", err
	}

	options := hexdump.DefaultOptions()
	options.StartAddress = uint64(span.Address)
	options.Highlight = highlight
	options.Color = color
	return hexdump.Dump(data, options), nil
}

func init() {
	flags := dumpCmd.Flags()
	flags.Uint64Var(&dumpAddress, "addr", 0, "start address, decimal or 0x-prefixed")
	flags.Uint64Var(&dumpSize, "size", 256, "number of bytes")
	flags.StringVar(&dumpBlock, "block", "", "dump the span of a configured block instead of --addr/--size")
	flags.BoolVar(&dumpPlain, "plain", false, "mark highlighted bytes with brackets instead of colors")
	dumpCmd.MarkFlagsMutuallyExclusive("addr", "block")
}
