package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ppiankov/wastewise/internal/common"
	"github.com/ppiankov/wastewise/internal/model"
	"github.com/ppiankov/wastewise/internal/pipeline"
	"github.com/ppiankov/wastewise/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir|file>",
	Short: "Classify many photos in parallel",
	Long: `Batch classifies every image in a directory, or every path and URL
listed in a text file (one per line, # starts a comment), using a pool
of concurrent workers. Every result is added to the history.

Example:
  wastewise batch ~/Pictures/bin-day
  wastewise batch inputs.txt --concurrency 8 --output-dir ./verdicts`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "", "write a JSON verdict per input to this directory")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for the batch")
	batchCmd.Flags().StringVar(&sessionID, "session", "", "session id stored with each record (default: random)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	input := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	workers := concurrency
	if workers <= 0 {
		workers = appConfig.Concurrency.Workers
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	paths, err := collectInputs(input)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no images found in %s", input)
	}

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	a, err := newApp(ctx, appConfig)
	if err != nil {
		return err
	}
	defer a.Close()

	session := sessionID
	if session == "" {
		session = uuid.NewString()
	}

	fmt.Fprintf(os.Stderr, "\n%s\n\n", TitleStyle.Render("Wastewise batch"))
	fmt.Fprintf(os.Stderr, "  Inputs:       %d\n", len(paths))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	if outputDir != "" {
		fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	}
	fmt.Fprintf(os.Stderr, "\n")

	classifier := worker.ClassifierFunc(func(ctx context.Context, path string) (*model.Verdict, error) {
		verdict, _, err := a.classifyAndRecord(ctx, path, session)
		return verdict, err
	})

	bar := newProgressBar(len(paths))
	processor := worker.NewBatchProcessor(classifier, workers)
	processor.OnResult(func(*worker.ClassifyResult) { _ = bar.Add(1) })

	results := processor.ProcessPaths(ctx, paths)
	_ = bar.Finish()

	renderer := &pipeline.Renderer{}
	successCount, failureCount, points := 0, 0, 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintln(os.Stderr, FormatError(fmt.Sprintf("%s: %s", displayInput(result.Path), common.UserMessage(result.Error))))
			continue
		}

		successCount++
		points += result.Verdict.Points

		if outputDir != "" {
			name := fmt.Sprintf("%03d-%s.json", result.Index+1, sanitizeFilename(result.Path))
			if err := renderer.RenderJSON(result.Verdict, filepath.Join(outputDir, name)); err != nil {
				fmt.Fprintln(os.Stderr, FormatError(fmt.Sprintf("%s: failed to write JSON: %v", result.Path, err)))
			}
		}

		if verbose {
			fmt.Fprintf(os.Stderr, "%s %s: %s (%s, %d%%)\n", SuccessIcon, displayInput(result.Path),
				result.Verdict.Primary.Name, result.Verdict.Outward, result.Verdict.Primary.Confidence)
		}
	}

	fmt.Fprintf(os.Stderr, "\n%s\n\n", TitleStyle.Render("Batch complete"))
	fmt.Fprintf(os.Stderr, "  Total:     %d\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Points:    %d\n", points)
	fmt.Fprintf(os.Stderr, "\n")

	if successCount == 0 {
		return fmt.Errorf("no input could be classified")
	}
	return nil
}

// collectInputs expands a directory into its images, or reads a list file
func collectInputs(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if info.IsDir() {
		return worker.CollectImagePaths(input)
	}
	return worker.ReadPathsFromFile(input)
}

func newProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Classifying...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
}
