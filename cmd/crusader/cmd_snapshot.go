package main

import (
	"fmt"

	"crusadermem/process"
	"crusadermem/process_blob"

	"github.com/spf13/cobra"
)

var (
	snapshotDir     string
	snapshotRegions []string
)

// snapshotCmd saves spans of the live process for later --replay
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save process memory to a directory for --replay",
	Long: `Save spans of process memory to a directory that --replay can read.

Without --region the snapshot covers the phase values and every configured
stat block.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(opts)
		if err != nil {
			return err
		}

		var regions []region
		for _, arg := range snapshotRegions {
			r, err := parseRegion(arg)
			if err != nil {
				return err
			}
			regions = append(regions, r)
		}
		if len(regions) == 0 {
			regions = defaultRegions(s.cfg)
		}

		dump, err := takeSnapshot(s, regions)
		if err != nil {
			return err
		}
		if err := dump.Save(snapshotDir); err != nil {
			return err
		}

		log.Infoln("Saved", len(dump.MemoryMap()), "regions of", dump.Name, "to", snapshotDir)
		return nil
	},
}

// takeSnapshot reads every region, after merging overlaps, into a ProcessDump
func takeSnapshot(s *session, regions []region) (*process_blob.ProcessDump, error) {
	name := s.cfg.ProcessName

	infos, err := s.helper.FindProcessByName(name)
	if err != nil {
		return nil, process.NotFound(name, err)
	}
	if len(infos) == 0 {
		return nil, process.NotFound(name, nil)
	}

	dump := process_blob.NewProcessDump(infos[0].PID, name)
	for _, r := range mergeRegions(regions) {
		data, err := s.reader.ReadSpan(name, r.Address, r.Size)
		if err != nil {
			return nil, err
		}
		if err := dump.AddRegion(r.Address, data); err != nil {
			return nil, fmt.Errorf("region %s: %w", r.Address.ToString(), err)
		}
	}
	return dump, nil
}

func init() {
	snapshotCmd.Flags().StringVarP(&snapshotDir, "out", "o", "", "output directory")
	snapshotCmd.Flags().StringSliceVar(&snapshotRegions, "region", nil, "addr:size span to save, repeatable")
	_ = snapshotCmd.MarkFlagRequired("out")
}
