package commands

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/robinvandernoord/r2-d2/cmd/r2d2/cmdutil"
	"github.com/robinvandernoord/r2-d2/internal/bytesize"
	"github.com/robinvandernoord/r2-d2/internal/cli/output"
	"github.com/robinvandernoord/r2-d2/internal/logger"
	"github.com/robinvandernoord/r2-d2/pkg/metrics"
	"github.com/robinvandernoord/r2-d2/pkg/r2"
	"github.com/robinvandernoord/r2-d2/pkg/r2/s3"
	"github.com/robinvandernoord/r2-d2/pkg/restic"
	"github.com/robinvandernoord/r2-d2/pkg/usage"
)

// overviewParallel bounds how many buckets are accounted at once. Each run
// fans out its own listing workers, so this stays small.
const overviewParallel = 4

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Report usage for every bucket in the account",
	Long: `Account every bucket in the account and report the total stored size
per bucket. Buckets that do not contain a restic repository at their root
are skipped with a warning.

Examples:
  # Usage across all buckets
  r2d2 overview

  # Machine-readable output
  r2d2 overview -o json`,
	Args: cobra.NoArgs,
	RunE: runOverview,
}

type overviewRow struct {
	Bucket  string `json:"bucket" yaml:"bucket"`
	RawSize uint64 `json:"raw_size" yaml:"raw_size"`
	Size    string `json:"size" yaml:"size"`
	Objects uint64 `json:"objects" yaml:"objects"`
}

func runOverview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}

	stop, err := cmdutil.StartRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer stop()

	client, err := cmdutil.NewClient(ctx, cfg)
	if err != nil {
		return err
	}

	buckets, err := s3.ListBuckets(ctx, client)
	if err != nil {
		return err
	}

	type result struct {
		report *usage.Report
		err    error
	}
	results := make([]result, len(buckets))

	var wg sync.WaitGroup
	sem := make(chan struct{}, overviewParallel)
	for i, b := range buckets {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, name string) {
			defer func() {
				<-sem
				wg.Done()
			}()

			store, err := cmdutil.NewStoreWithClient(client, cfg, name)
			if err != nil {
				results[i] = result{err: err}
				return
			}

			// Structural check only: a bucket without a repository config
			// at its root is skipped, and foreign buckets may not share
			// the configured password.
			repo, err := restic.Open(ctx, store, restic.OpenOptions{})
			if err != nil {
				results[i] = result{err: err}
				return
			}

			report, err := usage.Compute(ctx, usage.Options{
				Store:      store,
				Classifier: repo.Classifier(),
				Workers:    cfg.Concurrency,
				Metrics:    metrics.NewUsageMetrics(),
			})
			results[i] = result{report: report, err: err}
		}(i, b.Name)
	}
	wg.Wait()

	rows := make([]overviewRow, 0, len(buckets))
	var totalSize, totalObjects uint64
	for i, b := range buckets {
		res := results[i]
		if res.err != nil {
			if r2.IsCancelled(res.err) {
				return res.err
			}
			logger.Warn("skipping bucket", logger.Bucket(b.Name), logger.Err(res.err))
			continue
		}

		size := res.report.TotalSize()
		objects := res.report.TotalObjects()
		rows = append(rows, overviewRow{
			Bucket:  b.Name,
			RawSize: size,
			Size:    bytesize.ByteSize(size).String(),
			Objects: objects,
		})
		totalSize += size
		totalObjects += objects
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case output.FormatJSON:
		return output.PrintJSON(out, rows)
	case output.FormatYAML:
		return output.PrintYAML(out, rows)
	default:
		if len(rows) == 0 {
			fmt.Fprintln(out, "No accountable buckets found.")
			return nil
		}

		p, err := cmdutil.Printer()
		if err != nil {
			return err
		}

		table := output.NewTableData("BUCKET", "RAW SIZE", "SIZE", "OBJECTS")
		for _, row := range rows {
			table.AddRow(row.Bucket, fmt.Sprintf("%d", row.RawSize), row.Size, fmt.Sprintf("%d", row.Objects))
		}
		table.AddRow(
			p.Bold("TOTAL"),
			p.Bold(fmt.Sprintf("%d", totalSize)),
			p.Bold(bytesize.ByteSize(totalSize).String()),
			p.Bold(fmt.Sprintf("%d", totalObjects)),
		)
		return output.PrintTable(out, table)
	}
}
