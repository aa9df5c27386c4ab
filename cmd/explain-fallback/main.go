// Diagnostic program showing how the heuristic fallback scores filenames.
// Useful when tuning the item database keywords.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/wastewise/internal/fallback"
	"github.com/ppiankov/wastewise/internal/reward"
	"github.com/ppiankov/wastewise/internal/taxonomy"
)

func main() {
	names := os.Args[1:]
	if len(names) == 0 {
		names = []string{
			"plastic-bottle.jpg",
			"banana-peel.png",
			"old_phone_charger.jpg",
			"IMG_20240101_120000.jpg",
			"aa-battery.heic",
		}
	}

	classifier := fallback.NewClassifier()

	fmt.Println("=== Heuristic Fallback ===")
	fmt.Println()

	for _, name := range names {
		res := classifier.Classify(fallback.Input{Filename: name})
		r := reward.Calculate(res.Item.Category, res.Confidence)

		fmt.Printf("%s\n", name)
		fmt.Println(strings.Repeat("-", 60))
		fmt.Printf("  tokens:     %s\n", strings.Join(taxonomy.Tokenize(name), " "))
		fmt.Printf("  item:       %s (%s, %s)\n", res.Item.Name, res.Item.Category, taxonomy.Coarsen(res.Item.Category))
		fmt.Printf("  score:      %d\n", res.Score)
		fmt.Printf("  confidence: %d%%\n", res.Confidence)
		if len(res.Matched) > 0 {
			fmt.Printf("  matched:    %s\n", strings.Join(res.Matched, ", "))
		}
		if res.ZeroScore {
			fmt.Printf("  zero score: picked by filename hash\n")
		}
		fmt.Printf("  reward:     %d points, %d%% recyclable\n", r.Points, r.RecyclableRate)
		fmt.Println()
	}
}
