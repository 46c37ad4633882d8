package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"juriscope/internal/app"
	"juriscope/internal/ingest"
	"juriscope/internal/models"
	"juriscope/internal/util"
)

const maxLineBytes = 8 << 20

type documentIntaker interface {
	Intake(ctx context.Context, s ingest.ScrapedDocument) (models.Document, error)
}

type intakeSummary struct {
	Created    int `json:"created"`
	Duplicates int `json:"duplicates"`
	Invalid    int `json:"invalid"`
}

func intakeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "intake <file.jsonl>",
		Short: "Store scraped rulings, one JSON object per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			a, err := app.New(cmd.Context(), opts.cfg, opts.logger())
			if err != nil {
				return err
			}
			defer a.Close()

			sum, err := runIntake(cmd.Context(), a.Processor, f, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created=%d duplicates=%d invalid=%d\n", sum.Created, sum.Duplicates, sum.Invalid)
			return nil
		},
	}
}

// runIntake feeds every line of r to p. Bad lines are reported on errw and
// skipped; storage failures stop the run.
func runIntake(ctx context.Context, p documentIntaker, r io.Reader, errw io.Writer) (intakeSummary, error) {
	var sum intakeSummary
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLineBytes)
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		var doc ingest.ScrapedDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			sum.Invalid++
			fmt.Fprintf(errw, "line %d: %v\n", line, err)
			continue
		}
		_, err := p.Intake(ctx, doc)
		switch {
		case err == nil:
			sum.Created++
		case errors.Is(err, util.ErrDuplicateDocument):
			sum.Duplicates++
		case errors.Is(err, ingest.ErrInvalidDocument):
			sum.Invalid++
			fmt.Fprintf(errw, "line %d: %v\n", line, err)
		default:
			return sum, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return sum, fmt.Errorf("read intake file: %w", err)
	}
	return sum, nil
}
