package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ppiankov/wastewise/internal/common"
	"github.com/ppiankov/wastewise/internal/pipeline"
)

var (
	outJSON         string
	outMD           string
	classifyTimeout time.Duration
	sessionID       string
	noRecord        bool
	showAll         bool
)

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify <path|url>...",
	Short: "Classify one or more photos of waste items",
	Long: `Classify identifies the item in each photo, maps it to a waste category
and prints disposal guidance and reward points. Each result is added to
the history unless --no-record is set.

Inputs may be local image files or http(s) links. A link to a web page
is resolved to the page's preview image.

Example:
  wastewise classify plastic-bottle.jpg
  wastewise classify https://example.com/photos/can.png --json verdict.json
  wastewise classify *.jpg --all`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringVar(&outJSON, "json", "", "write the verdict as JSON to this path (single input only)")
	classifyCmd.Flags().StringVar(&outMD, "md", "", "write the verdict as Markdown to this path (single input only)")
	classifyCmd.Flags().DurationVar(&classifyTimeout, "timeout", 2*time.Minute, "overall timeout")
	classifyCmd.Flags().StringVar(&sessionID, "session", "", "session id stored with each record (default: random)")
	classifyCmd.Flags().BoolVar(&noRecord, "no-record", false, "do not add results to the history")
	classifyCmd.Flags().BoolVar(&showAll, "all", false, "list every detected item")
}

func runClassify(cmd *cobra.Command, args []string) error {
	if (outJSON != "" || outMD != "") && len(args) > 1 {
		return fmt.Errorf("--json and --md need exactly one input, got %d", len(args))
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), classifyTimeout)
	defer cancel()

	a, err := newApp(ctx, appConfig)
	if err != nil {
		return err
	}
	defer a.Close()

	session := sessionID
	if session == "" {
		session = uuid.NewString()
	}

	renderer := &pipeline.Renderer{IncludeFooter: true}
	failures := 0

	for _, input := range args {
		if verbose {
			fmt.Fprintf(os.Stderr, "⚙️  Classifying %s\n", input)
		}

		img, err := a.loadInput(ctx, input)
		if err != nil {
			failures++
			fmt.Fprintln(os.Stderr, FormatError(fmt.Sprintf("%s: %s", input, common.UserMessage(err))))
			continue
		}

		verdict, err := a.orchestrator.Classify(ctx, img)
		if err != nil {
			failures++
			fmt.Fprintln(os.Stderr, FormatError(fmt.Sprintf("%s: %s", input, common.UserMessage(err))))
			continue
		}

		if !noRecord {
			a.ledger.Record(verdict, recordContext(img, session))
		}

		renderVerdict(os.Stdout, displayInput(input), verdict, showAll || a.cfg.Output.Verbose)

		if outJSON != "" {
			if err := renderer.RenderJSON(verdict, outJSON); err != nil {
				return fmt.Errorf("render failed: %w", err)
			}
			fmt.Fprintf(os.Stderr, "%s Wrote JSON: %s\n", SuccessIcon, outJSON)
		}
		if outMD != "" {
			if err := renderer.RenderVerdictMarkdown(verdict, img.Filename, outMD); err != nil {
				return fmt.Errorf("render failed: %w", err)
			}
			fmt.Fprintf(os.Stderr, "%s Wrote Markdown: %s\n", SuccessIcon, outMD)
		}
	}

	if failures == len(args) {
		return fmt.Errorf("no input could be classified")
	}
	return nil
}

func displayInput(input string) string {
	if isURL(input) {
		return input
	}
	return filepath.Base(input)
}

func sanitizeFilename(s string) string {
	s = filepath.Base(s)
	s = strings.TrimSuffix(s, filepath.Ext(s))

	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
		"\"", "_", "<", "_", ">", "_", "|", "_", " ", "-",
	)
	s = replacer.Replace(s)

	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" || s == "." {
		s = "image"
	}
	return s
}
