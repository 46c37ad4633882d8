package main

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"

	"juriscope/internal/workflows"
)

func ingestCmd(opts *options) *cobra.Command {
	var (
		in   workflows.IngestBatchInput
		wait bool
	)
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Start an analysis batch on the Temporal worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("limit") && len(in.DocumentIDs) == 0 {
				in.Limit = opts.cfg.BatchDefaultLimit
			}
			if !cmd.Flags().Changed("delay") {
				in.DelaySeconds = opts.cfg.BatchDelaySecs
			}
			c, err := client.Dial(client.Options{HostPort: opts.cfg.TemporalAddress, Logger: opts.logger()})
			if err != nil {
				return fmt.Errorf("dial temporal: %w", err)
			}
			defer c.Close()

			run, err := c.ExecuteWorkflow(cmd.Context(), client.StartWorkflowOptions{
				ID:        "ingest-batch-" + uuid.NewString(),
				TaskQueue: opts.cfg.TemporalTaskQueue,
			}, workflows.IngestBatchWorkflow, in)
			if err != nil {
				return fmt.Errorf("start batch: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "workflow_id=%s run_id=%s\n", run.GetID(), run.GetRunID())
			if !wait {
				return nil
			}
			var res workflows.BatchResult
			if err := run.Get(cmd.Context(), &res); err != nil {
				return fmt.Errorf("batch %s: %w", run.GetID(), err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&in.DocumentIDs, "ids", nil, "Document ids to analyze (default: reprocessing candidates)")
	f.BoolVar(&in.ForceReprocess, "force", false, "Analyze explicit ids even when already complete")
	f.StringVar(&in.Model, "model", opts.cfg.DefaultModel, "Preferred model hint")
	f.IntVar(&in.Limit, "limit", 0, "Maximum documents in the batch")
	f.IntVar(&in.DelaySeconds, "delay", 0, "Seconds between documents, negative for none")
	f.BoolVar(&wait, "wait", false, "Wait for the batch and print its result")
	return cmd
}
