package main

import (
	"os"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	opts options

	log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "crusader"))
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "crusader",
	Short: "Read match statistics out of a running Stronghold Crusader",
	Long: `crusader reads typed values out of the memory of a running
Stronghold Crusader process.

Every command locates the process by name, opens it, reads what it needs and
closes it again. With --replay the commands run against a snapshot directory
written by "crusader snapshot" instead of a live process.`,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	flags.StringVarP(&opts.processName, "process", "p", "", "process name, overriding the configuration")
	flags.StringVar(&opts.replayDir, "replay", "", "read from a snapshot directory instead of a live process")

	rootCmd.AddCommand(phaseCmd, valueCmd, readCmd, dumpCmd, findCmd, watchCmd, snapshotCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
