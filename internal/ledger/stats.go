package ledger

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ppiankov/wastewise/internal/model"
)

const (
	topItemsLimit = 10
	weekCount     = 4
	week          = 7 * 24 * time.Hour
)

// Per-record impact estimates in kilograms
const (
	recycledWasteKg  = 0.2
	recycledCO2Kg    = 0.5
	compostedWasteKg = 0.15
	compostedCO2Kg   = 0.18
)

// Stats recomputes statistics over the current record set
func (l *Ledger) Stats() (*model.ClassificationStats, error) {
	records, err := l.snapshot()
	if err != nil {
		return nil, err
	}
	return ComputeStats(records, l.now()), nil
}

// ComputeStats is pure. An empty record set yields all-zero statistics.
func ComputeStats(records []model.ClassificationRecord, now time.Time) *model.ClassificationStats {
	stats := &model.ClassificationStats{
		CategoryBreakdown: make(map[model.OutwardCategory]int, len(model.OutwardCategories)),
		TopItems:          []model.ItemStat{},
		WeeklyStats:       weeklyStats(records, now),
	}
	for _, c := range model.OutwardCategories {
		stats.CategoryBreakdown[c] = 0
	}

	rateSum := 0
	var impact model.EnvironmentalImpact
	for _, r := range records {
		stats.TotalClassifications++
		stats.TotalPoints += r.Points
		stats.CategoryBreakdown[r.Category]++
		rateSum += r.RecyclableRate

		switch r.Category {
		case model.OutwardRecyclable:
			impact.ItemsRecycled++
			impact.WasteReducedKg += recycledWasteKg
			impact.CO2SavedKg += recycledCO2Kg
		case model.OutwardOrganic:
			impact.ItemsComposted++
			impact.WasteReducedKg += compostedWasteKg
			impact.CO2SavedKg += compostedCO2Kg
		}
	}

	if len(records) > 0 {
		stats.AverageRecyclableRate = round2(float64(rateSum) / float64(len(records)))
	}
	impact.WasteReducedKg = round2(impact.WasteReducedKg)
	impact.CO2SavedKg = round2(impact.CO2SavedKg)
	stats.EnvironmentalImpact = impact
	stats.TopItems = topItems(records)

	return stats
}

// topItems groups by item name, most frequent first. Ties go to more points,
// then to the name.
func topItems(records []model.ClassificationRecord) []model.ItemStat {
	byName := make(map[string]*model.ItemStat)
	for _, r := range records {
		it, ok := byName[r.ItemName]
		if !ok {
			it = &model.ItemStat{Name: r.ItemName}
			byName[r.ItemName] = it
		}
		it.Count++
		it.Points += r.Points
	}

	items := make([]model.ItemStat, 0, len(byName))
	for _, it := range byName {
		items = append(items, *it)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		if items[i].Points != items[j].Points {
			return items[i].Points > items[j].Points
		}
		return items[i].Name < items[j].Name
	})

	if len(items) > topItemsLimit {
		items = items[:topItemsLimit]
	}
	return items
}

// weeklyStats buckets records into four seven-day windows ending at now,
// oldest first. Each window is [start, end) except the current one, which
// includes now itself.
func weeklyStats(records []model.ClassificationRecord, now time.Time) []model.WeekStat {
	weeks := make([]model.WeekStat, weekCount)
	for i := range weeks {
		ago := weekCount - 1 - i
		end := now.Add(-time.Duration(ago) * week)
		weeks[i] = model.WeekStat{
			Label: weekLabel(ago),
			Start: end.Add(-week),
			End:   end,
		}
	}

	for _, r := range records {
		for i := range weeks {
			w := &weeks[i]
			current := i == weekCount-1
			if r.Timestamp.Before(w.Start) {
				continue
			}
			if r.Timestamp.Before(w.End) || (current && r.Timestamp.Equal(w.End)) {
				w.Count++
				w.Points += r.Points
				break
			}
		}
	}
	return weeks
}

func weekLabel(ago int) string {
	switch ago {
	case 0:
		return "This week"
	case 1:
		return "Last week"
	default:
		return fmt.Sprintf("%d weeks ago", ago)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
