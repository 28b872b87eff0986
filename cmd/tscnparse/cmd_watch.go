package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	tscnscene "github.com/JiepengTan/tscnscene"
)

var watchLog = commonlog.GetLogger("tscnparse.watch")

func newWatchCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <file.tscn>",
		Short: "Re-validate a scene whenever it or a resource next to it is saved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			opts, err := flags.options()
			if err != nil {
				return err
			}

			check := func() {
				res, err := tscnscene.Parse(file, opts...)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", file, err)
					return
				}
				printReport(cmd.OutOrStdout(), file, res.Report)
			}
			check()

			dirs := []string{filepath.Dir(file)}
			if flags.cfg.AssetDir != "" && filepath.Clean(flags.cfg.AssetDir) != filepath.Clean(dirs[0]) {
				dirs = append(dirs, flags.cfg.AssetDir)
			}
			w, err := NewWatcher(dirs...)
			if err != nil {
				return fmt.Errorf("watch: %w", err)
			}
			defer w.Close()

			ctx := cmd.Context()
			for {
				select {
				case <-ctx.Done():
					return nil
				case name, ok := <-w.Events:
					if !ok {
						return nil
					}
					watchLog.Debugf("changed: %s", name)
					check()
				case err, ok := <-w.Errors:
					if !ok {
						return nil
					}
					watchLog.Warningf("watch error: %v", err)
				}
			}
		},
	}
	return cmd
}
