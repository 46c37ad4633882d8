package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"juriscope/internal/app"
	"juriscope/internal/models"
	"juriscope/internal/util"
)

type generalRow struct {
	Position int    `json:"position"`
	ID       string `json:"id"`
	Slug     string `json:"slug"`
	Title    string `json:"title"`
}

func generalCmd(opts *options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "general",
		Short: "List the portal's general section",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmd.Context(), opts.cfg, opts.logger())
			if err != nil {
				return err
			}
			defer a.Close()

			arts, err := a.Store.ListGeneralArticles(cmd.Context(), "")
			if err != nil {
				return err
			}
			rows := generalRows(arts)
			if out != "" {
				return util.WriteJSONLinesAtomic(out, rows)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "POS\tSLUG\tTITLE")
			for _, r := range rows {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", r.Position, r.Slug, util.Snippet(r.Title, 60))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Write the section as JSON lines to this file")
	return cmd
}

func generalRows(arts []models.Article) []generalRow {
	rows := make([]generalRow, 0, len(arts))
	for _, a := range arts {
		r := generalRow{ID: a.ID, Slug: a.Slug, Title: a.Title}
		if a.GeneralPosition != nil {
			r.Position = *a.GeneralPosition
		}
		rows = append(rows, r)
	}
	return rows
}
