package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	tscnscene "github.com/JiepengTan/tscnscene"
)

type rootFlags struct {
	configPath string
	assetDir   string
	layout     string
	workers    int
	verbosity  int
	logFile    string

	cfg *tscnscene.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd(&rootFlags{}).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(flags *rootFlags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "tscnparse",
		Short:        "Decode Godot scene documents into scene graphs and tile layers",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return flags.load()
		},
	}
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "YAML config file")
	pf.StringVar(&flags.assetDir, "assets", "", "directory res:// paths resolve against (default: the scene's directory)")
	pf.StringVar(&flags.layout, "layout", "", "tile word layout: cell-atlas-source or godot")
	pf.IntVar(&flags.workers, "workers", 0, "layers decoded concurrently")
	pf.CountVarP(&flags.verbosity, "verbose", "v", "increase log verbosity")
	pf.StringVar(&flags.logFile, "log", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(newParseCmd(flags))
	rootCmd.AddCommand(newValidateCmd(flags))
	rootCmd.AddCommand(newWatchCmd(flags))
	return rootCmd
}

// load reads the config file, if any, and configures logging. Flags given
// on the command line win over the config file.
func (f *rootFlags) load() error {
	f.cfg = &tscnscene.Config{}
	if f.configPath != "" {
		cfg, err := tscnscene.LoadConfig(f.configPath)
		if err != nil {
			return err
		}
		f.cfg = cfg
	}
	if f.assetDir != "" {
		f.cfg.AssetDir = f.assetDir
	}
	if f.layout != "" {
		f.cfg.Layout = f.layout
	}
	if f.workers > 0 {
		f.cfg.Workers = f.workers
	}
	verbosity := f.cfg.Verbosity
	if f.verbosity > 0 {
		verbosity = f.verbosity
	}
	var logPath *string
	if f.logFile != "" {
		logPath = &f.logFile
	}
	commonlog.Configure(verbosity, logPath)
	return nil
}

func (f *rootFlags) options() ([]tscnscene.Option, error) {
	return f.cfg.Options()
}
