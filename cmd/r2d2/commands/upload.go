package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"

	"github.com/robinvandernoord/r2-d2/cmd/r2d2/cmdutil"
	"github.com/robinvandernoord/r2-d2/internal/bytesize"
	"github.com/robinvandernoord/r2-d2/internal/cli/output"
	"github.com/robinvandernoord/r2-d2/internal/logger"
	"github.com/robinvandernoord/r2-d2/pkg/r2"
	"github.com/robinvandernoord/r2-d2/pkg/transfer"
)

var (
	uploadBucket       string
	uploadStorageClass string
)

var uploadCmd = &cobra.Command{
	Use:   "upload FILE [KEY]",
	Short: "Upload a file to a bucket",
	Long: `Upload a file to the configured bucket. Files larger than the
configured part size are uploaded in parallel multipart chunks.

The object key defaults to the file's base name.

Examples:
  # Upload with the default key
  r2d2 upload backup.tar.gz

  # Upload under an explicit key
  r2d2 upload backup.tar.gz archives/2026/backup.tar.gz

  # Upload straight into the infrequent access tier
  r2d2 upload backup.tar.gz --storage-class STANDARD_IA`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadBucket, "bucket", "b", "", "Target bucket (default: R2_BUCKET)")
	uploadCmd.Flags().StringVar(&uploadStorageClass, "storage-class", "", "Storage class for the object (STANDARD or STANDARD_IA)")
}

type uploadSummary struct {
	Key       string `json:"key" yaml:"key"`
	Size      uint64 `json:"size" yaml:"size"`
	Parts     int    `json:"parts" yaml:"parts"`
	Multipart bool   `json:"multipart" yaml:"multipart"`
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	file := args[0]
	key := filepath.Base(file)
	if len(args) == 2 {
		key = args[1]
	}

	if uploadStorageClass != "" {
		if _, ok := r2.TierFromStorageClass(uploadStorageClass); !ok {
			return fmt.Errorf("unknown storage class %q (valid: STANDARD, STANDARD_IA)", uploadStorageClass)
		}
	}

	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}

	stop, err := cmdutil.StartRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer stop()

	bucket, err := cmdutil.ResolveBucket(cfg, uploadBucket)
	if err != nil {
		return err
	}

	store, err := cmdutil.NewStore(ctx, cfg, bucket)
	if err != nil {
		return err
	}

	progress := progressLine(key)
	uploader := transfer.New(store, transfer.Config{
		PartSize:      uint64(cfg.Upload.PartSize),
		ParallelParts: cfg.Upload.Parallel,
		StorageClass:  uploadStorageClass,
		Progress:      progress,
	})

	logger.Info("starting upload",
		logger.Bucket(bucket),
		logger.Key(key),
		"file", file,
	)

	result, err := uploader.Upload(ctx, file, key)
	if progress != nil {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		logger.Error("upload failed", logger.Key(key), logger.Err(err))
		return err
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}

	summary := uploadSummary{
		Key:       result.Key,
		Size:      result.Size,
		Parts:     result.Parts,
		Multipart: result.Multipart,
	}

	out := cmd.OutOrStdout()
	switch format {
	case output.FormatJSON:
		return output.PrintJSON(out, summary)
	case output.FormatYAML:
		return output.PrintYAML(out, summary)
	default:
		cmdutil.PrintSuccess(fmt.Sprintf("Uploaded %s (%s) to %s in %d part(s)",
			file, bytesize.ByteSize(result.Size), result.Key, result.Parts))
		return nil
	}
}

// progressLine returns a progress callback that redraws a single stderr
// line, or nil when stderr is not a terminal.
func progressLine(key string) func(uploaded, total uint64) {
	st, err := os.Stderr.Stat()
	if err != nil || st.Mode()&os.ModeCharDevice == 0 {
		return nil
	}

	var mu sync.Mutex
	return func(uploaded, total uint64) {
		mu.Lock()
		defer mu.Unlock()

		pct := uint64(100)
		if total > 0 {
			pct = uploaded * 100 / total
		}
		fmt.Fprintf(os.Stderr, "\r%s  %3d%%  (%s / %s)",
			key, pct, bytesize.ByteSize(uploaded), bytesize.ByteSize(total))
	}
}
