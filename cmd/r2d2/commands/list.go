package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/robinvandernoord/r2-d2/cmd/r2d2/cmdutil"
	"github.com/robinvandernoord/r2-d2/internal/cli/timeutil"
	"github.com/robinvandernoord/r2-d2/pkg/r2/s3"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List buckets in the account",
	Long: `List all buckets in the account with their creation time.

Examples:
  # List buckets
  r2d2 list

  # Machine-readable output
  r2d2 list -o json`,
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE:    runList,
}

type bucketList []bucketRow

type bucketRow struct {
	Name    string    `json:"name" yaml:"name"`
	Created time.Time `json:"created" yaml:"created"`
}

// Headers implements output.TableRenderer.
func (l bucketList) Headers() []string {
	return []string{"NAME", "CREATED"}
}

// Rows implements output.TableRenderer.
func (l bucketList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, b := range l {
		rows = append(rows, []string{b.Name, timeutil.FormatLocal(b.Created)})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
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

	rows := make(bucketList, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, bucketRow{Name: b.Name, Created: b.CreationDate})
	}

	return cmdutil.PrintOutput(cmd.OutOrStdout(), rows, len(rows) == 0, "No buckets found.", rows)
}
