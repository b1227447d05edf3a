package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anglerlog/tacklebox/pkg/tacklebox"
	"github.com/anglerlog/tacklebox/pkg/tacklebox/config"
	"github.com/anglerlog/tacklebox/pkg/tacklebox/identity"
	"github.com/anglerlog/tacklebox/pkg/tacklebox/ingest"
	"github.com/anglerlog/tacklebox/pkg/tacklebox/store/sqlite"
)

var (
	importSurface string
	importOwner   string
	importDB      string
	importHTML    bool
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Bulk-import gear from a delimited text file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		raw := string(data)
		if importHTML {
			raw = ingest.ExtractTableText(raw)
		}

		ctx := cmd.Context()
		st, err := sqlite.OpenSQLite(ctx, importDB)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		schemas, err := (&config.Loader{}).Load()
		if err != nil {
			return err
		}

		box := tacklebox.New(tacklebox.Options{
			Store:    st,
			Identity: identity.Static{User: identity.User{ID: importOwner, Email: importOwner + "@local"}},
			Schemas:  schemas,
		})

		count, err := box.Commit(ctx, "", importSurface, raw)
		if err != nil {
			// Show the per-line detail before failing.
			preview, perr := box.Preview(ctx, importOwner, importSurface, raw)
			if perr == nil {
				printErrors(cmd, preview)
			}
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "inserted %d %s\n", count, importSurface)
		return nil
	},
}

func printErrors(cmd *cobra.Command, res ingest.PreviewResult) {
	visible, hidden := res.VisibleErrors(0)
	for _, e := range visible {
		fmt.Fprintln(cmd.ErrOrStderr(), e.String())
	}
	if hidden > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "... and %d more\n", hidden)
	}
	if res.Missing > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d rows with unresolved references\n", res.Missing)
	}
}

func init() {
	importCmd.Flags().StringVar(&importSurface, "surface", "reels", "ingestion surface (reels, rods, lures, combos)")
	importCmd.Flags().StringVar(&importOwner, "owner", "local", "owner id to tag rows with")
	importCmd.Flags().StringVar(&importDB, "db", "tacklebox.db", "path to the SQLite database")
	importCmd.Flags().BoolVar(&importHTML, "html", false, "treat input as an HTML table")
}
