package main

import (
	"fmt"
	"io"

	"crusadermem/config"
	"crusadermem/process_codec"
	"crusadermem/stat_block"
	"crusadermem/table"

	"github.com/spf13/cobra"
)

// readCmd reads configured stat blocks
var readCmd = &cobra.Command{
	Use:   "read [block...]",
	Short: "Read configured stat blocks",
	Long: `Read the named stat blocks from the configuration, or every block when
none is named. Each block is read with a single transfer and printed as one
row per entity.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(opts)
		if err != nil {
			return err
		}

		blocks, err := selectBlocks(s.cfg, args)
		if err != nil {
			return err
		}

		for _, block := range blocks {
			fields, err := stat_block.Read(s.reader, s.cfg.ProcessName, block)
			if err != nil {
				return err
			}
			if err := printBlock(cmd.OutOrStdout(), block, fields); err != nil {
				return err
			}
		}
		return nil
	},
}

func selectBlocks(cfg *config.Config, names []string) ([]config.Block, error) {
	if len(names) == 0 {
		if len(cfg.Blocks) == 0 {
			return nil, fmt.Errorf("no blocks configured")
		}
		return cfg.Blocks, nil
	}

	blocks := make([]config.Block, 0, len(names))
	for _, name := range names {
		block, ok := cfg.Block(name)
		if !ok {
			return nil, fmt.Errorf("unknown block %q", name)
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

func printBlock(w io.Writer, block config.Block, fields []stat_block.Field) error {
	fmt.Fprintf(w, "%s @ 0x%X\n", block.Name, block.Address)

	columns := []table.ColumnSpec{{Header: "#", AlignRight: true}}
	for _, stat := range block.StatOffsets {
		columns = append(columns, table.ColumnSpec{Header: stat.Name, AlignRight: stat.Type != process_codec.FixedText})
	}
	tbl := table.NewTable(columns...)

	for i, entity := range stat_block.ByEntity(fields) {
		row := []string{fmt.Sprint(i)}
		for _, stat := range block.StatOffsets {
			v := entity[stat.Name]
			if stat.Type == process_codec.FixedText {
				row = append(row, v.Text())
			} else {
				row = append(row, v.String())
			}
		}
		tbl.AddRow(row...)
	}
	return tbl.Render(w)
}
