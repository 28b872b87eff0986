package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	tscnscene "github.com/JiepengTan/tscnscene"
)

var errFindings = errors.New("validation findings")

func newValidateCmd(flags *rootFlags) *cobra.Command {
	var strict bool
	var samples int

	cmd := &cobra.Command{
		Use:   "validate <file.tscn>...",
		Short: "Check every placed tile against its tile set source",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("samples") {
				opts = append(opts, tscnscene.WithSampleLimit(samples))
			}
			dirty := false
			for _, file := range args {
				res, err := tscnscene.Parse(file, opts...)
				if err != nil {
					return fmt.Errorf("parse %s: %w", file, err)
				}
				printReport(cmd.OutOrStdout(), file, res.Report)
				dirty = dirty || !res.Report.Clean()
			}
			if strict && dirty {
				return errFindings
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any finding is reported")
	cmd.Flags().IntVar(&samples, "samples", tscnscene.DefaultSampleLimit, "offending tiles to print per file")
	return cmd
}

func printReport(w io.Writer, file string, r *tscnscene.Report) {
	fmt.Fprintf(w, "%s: %s\n", file, r)
	for _, s := range r.InvalidSources {
		fmt.Fprintf(w, "  invalid source %d (%s): %s\n", s.ID, s.Resource, s.Reason)
	}
	for _, f := range r.Samples {
		fmt.Fprintf(w, "  %s\n", f)
	}
}
