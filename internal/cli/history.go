package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/wastewise/internal/ledger"
	"github.com/ppiankov/wastewise/internal/model"
	"github.com/ppiankov/wastewise/internal/pipeline"
)

var (
	historySearch   string
	historyCategory string
	historyDays     int
	historyLimit    int
	historyJSON     bool
	statsJSON       string
	statsMD         string
	clearConfirm    bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show recycling statistics",
	Long: `Stats summarizes the classification history: totals, points, a category
breakdown, the most frequent items, the last four weeks and an estimate
of the waste diverted from landfill.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), appConfig)
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := a.ledger.Stats()
		if err != nil {
			return fmt.Errorf("compute stats: %w", err)
		}

		renderer := &pipeline.Renderer{IncludeFooter: true}
		if statsJSON != "" {
			if err := renderer.RenderJSON(stats, statsJSON); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "%s Wrote JSON: %s\n", SuccessIcon, statsJSON)
		}
		if statsMD != "" {
			if err := renderer.RenderStatsMarkdown(stats, statsMD); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "%s Wrote Markdown: %s\n", SuccessIcon, statsMD)
		}

		renderStats(os.Stdout, stats)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past classifications",
	Long: `History lists recorded classifications, newest first.

Example:
  wastewise history --days 7
  wastewise history --search bottle --category recyclable`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		q := ledger.Query{Text: historySearch}
		if historyCategory != "" {
			c, ok := model.ParseOutwardCategory(historyCategory)
			if !ok {
				return fmt.Errorf("unknown category %q (use recyclable, organic, hazardous or general)", historyCategory)
			}
			q.Category = c
		}

		a, err := newApp(cmd.Context(), appConfig)
		if err != nil {
			return err
		}
		defer a.Close()

		var records []model.ClassificationRecord
		if historyDays > 0 {
			recent, err := a.ledger.Recent(historyDays)
			if err != nil {
				return err
			}
			for _, r := range recent {
				if q.Match(r) {
					records = append(records, r)
				}
			}
		} else if records, err = a.ledger.Find(q); err != nil {
			return err
		}

		if historyLimit > 0 && len(records) > historyLimit {
			records = records[:historyLimit]
		}

		if historyJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}
		renderRecords(os.Stdout, records)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export the classification history to a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), appConfig)
		if err != nil {
			return err
		}
		defer a.Close()

		data, err := a.ledger.Export()
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		if err := os.WriteFile(args[0], data, 0o644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}

		fmt.Fprintf(os.Stderr, "%s Exported history to %s\n", SuccessIcon, args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the classification history with an export file",
	Long: `Import replaces the whole history with the contents of an export file.
Existing records are discarded; nothing is merged.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read import file: %w", err)
		}

		a, err := newApp(cmd.Context(), appConfig)
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.ledger.Import(data)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "%s Imported %d records\n", SuccessIcon, n)
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the whole classification history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearConfirm {
			return fmt.Errorf("this deletes every record; run again with --yes to confirm")
		}

		a, err := newApp(cmd.Context(), appConfig)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ledger.Clear(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s History cleared\n", SuccessIcon)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd, historyCmd, exportCmd, importCmd, clearCmd)

	statsCmd.Flags().StringVar(&statsJSON, "json", "", "also write the statistics as JSON to this path")
	statsCmd.Flags().StringVar(&statsMD, "md", "", "also write the statistics as Markdown to this path")

	historyCmd.Flags().StringVarP(&historySearch, "search", "s", "", "match item name, filename or description")
	historyCmd.Flags().StringVarP(&historyCategory, "category", "c", "", "recyclable, organic, hazardous or general")
	historyCmd.Flags().IntVarP(&historyDays, "days", "d", 0, "only the last N days")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 50, "maximum rows (0 for all)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print records as JSON")

	clearCmd.Flags().BoolVar(&clearConfirm, "yes", false, "confirm deletion")
}
