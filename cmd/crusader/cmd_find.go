package main

import (
	"fmt"
	"io"

	"crusadermem/process_codec"
	"crusadermem/search"

	"github.com/spf13/cobra"
)

var (
	findType      string
	findValue     string
	findRegions   []string
	findAlignment uint
	findMax       int
)

// findCmd searches spans for a known value
var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Search spans of process memory for a value",
	Long: `Search the given spans for a typed value and print every address that
holds it. Searching again after the value changes in game narrows the
candidates down to the stat's offset.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(opts)
		if err != nil {
			return err
		}

		var regions []region
		for _, arg := range findRegions {
			r, err := parseRegion(arg)
			if err != nil {
				return err
			}
			regions = append(regions, r)
		}
		if len(regions) == 0 {
			regions = defaultRegions(s.cfg)
		}

		return findValueIn(s, cmd.OutOrStdout(), regions, findType, findValue,
			search.WithMinAlignment(findAlignment), search.WithMaxResults(findMax))
	},
}

func findValueIn(s *session, w io.Writer, regions []region, tag, value string, options ...search.Option) error {
	t, err := process_codec.ParseType(tag)
	if err != nil {
		return err
	}
	target, err := search.ParseValue(t, value)
	if err != nil {
		return err
	}

	for _, r := range mergeRegions(regions) {
		data, err := s.reader.ReadSpan(s.cfg.ProcessName, r.Address, r.Size)
		if err != nil {
			return err
		}

		results, err := search.Search(data, r.Address, target, options...)
		if err != nil {
			return err
		}
		for _, result := range results {
			fmt.Fprintf(w, "%s +0x%X\n", result.Address.ToString(), uint64(result.Offset))
		}
	}
	return nil
}

func init() {
	flags := findCmd.Flags()
	flags.StringVarP(&findType, "type", "t", "int", "value type: int, word, byte, bool or string")
	flags.StringVar(&findValue, "value", "", "value to search for")
	flags.StringSliceVar(&findRegions, "region", nil, "addr:size span to search, repeatable; defaults to the configured spans")
	flags.UintVar(&findAlignment, "align", 1, "step between candidate offsets within a span")
	flags.IntVar(&findMax, "max", 0, "stop after this many matches per span (0 for no limit)")
	_ = findCmd.MarkFlagRequired("value")
}
