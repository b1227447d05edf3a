package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/anglerlog/tacklebox/pkg/tacklebox/config"
	"github.com/anglerlog/tacklebox/pkg/tacklebox/ingest"
)

var (
	previewSurface string
	previewHTML    bool
)

var previewCmd = &cobra.Command{
	Use:   "preview FILE",
	Short: "Parse a delimited file and show the rows and errors without writing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		raw := string(data)
		if previewHTML {
			raw = ingest.ExtractTableText(raw)
		}

		schemas, err := (&config.Loader{}).Load()
		if err != nil {
			return err
		}
		schema, ok := schemas[previewSurface]
		if !ok {
			return fmt.Errorf("unknown surface %q", previewSurface)
		}

		// Offline preview: reference collections aren't loaded, so combo
		// rows all show as missing. Use this for field-level checks.
		res := ingest.ComputePreview(raw, schema, nil)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "LINE\tNAME\tSTATUS")
		for _, row := range res.Rows {
			fmt.Fprintf(w, "%d\t%s\t%s\n", row.Line, row.Name, row.Status)
		}
		w.Flush()

		printErrors(cmd, res)
		if res.InsertEligible {
			fmt.Fprintf(cmd.OutOrStdout(), "%d rows, insert-eligible\n", len(res.Rows))
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%d rows, not eligible: %s\n", len(res.Rows), res.Reason)
		}
		return nil
	},
}

func init() {
	previewCmd.Flags().StringVar(&previewSurface, "surface", "reels", "ingestion surface (reels, rods, lures, combos)")
	previewCmd.Flags().BoolVar(&previewHTML, "html", false, "treat input as an HTML table")
}
