package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	tscnscene "github.com/JiepengTan/tscnscene"
)

func newParseCmd(flags *rootFlags) *cobra.Command {
	var outputFile string
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "parse <file.tscn>",
		Short: "Parse a scene and write its tile layers, tile set and nodes as JSON or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputFile := args[0]
			if outputFormat == "" {
				outputFormat = flags.cfg.Format
			}
			if outputFormat == "" {
				outputFormat = "json"
			}
			if outputFile == "" {
				ext := filepath.Ext(inputFile)
				outputFile = inputFile[:len(inputFile)-len(ext)] + "_tilemap." + outputFormat
			}

			opts, err := flags.options()
			if err != nil {
				return err
			}
			res, err := tscnscene.Parse(inputFile, opts...)
			if err != nil {
				return fmt.Errorf("parse %s: %w", inputFile, err)
			}

			out := cmd.OutOrStdout()
			if outputFile != "-" {
				f, err := os.Create(outputFile)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				out = f
			}
			if err := encode(out, outputFormat, tscnscene.ToMapData(res)); err != nil {
				return err
			}
			if outputFile != "-" {
				fmt.Fprintf(cmd.OutOrStdout(), "Successfully converted %s to %s (%s)\n", inputFile, outputFile, res.Report)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file, - for stdout (default <input>_tilemap.<format>)")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format: json or yaml")
	return cmd
}

func encode(w io.Writer, format string, data *tscnscene.MapData) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	return nil
}
