package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"juriscope/internal/app"
	"juriscope/internal/integrity"
	"juriscope/internal/util"
)

func verifyCmd(opts *options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "verify <id>...",
		Short: "Recompute document checksums and flag corruption",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmd.Context(), opts.cfg, opts.logger())
			if err != nil {
				return err
			}
			defer a.Close()

			var (
				b       strings.Builder
				corrupt int
			)
			for _, id := range args {
				rep, err := a.Verifier.Verify(cmd.Context(), id)
				switch {
				case integrity.IsMismatch(err):
					corrupt++
					fmt.Fprintf(&b, "%s\t%s\t%s\n", id, rep.Status, strings.Join(rep.Mismatched, ","))
				case err != nil:
					return err
				default:
					fmt.Fprintf(&b, "%s\t%s\n", id, rep.Status)
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), b.String())
			if out != "" {
				if err := util.WriteTextAtomic(out, b.String()); err != nil {
					return err
				}
			}
			if corrupt > 0 {
				return fmt.Errorf("%d of %d documents: %w", corrupt, len(args), util.ErrIntegrityMismatch)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Also write the report to this file")
	return cmd
}
