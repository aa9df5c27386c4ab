package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/wastewise/internal/model"
)

func TestStats_Empty(t *testing.T) {
	l, _ := newTestLedger(t, 0)

	s, err := l.Stats()
	require.NoError(t, err)

	assert.Zero(t, s.TotalClassifications)
	assert.Zero(t, s.TotalPoints)
	assert.Zero(t, s.AverageRecyclableRate)
	assert.Empty(t, s.TopItems)
	assert.Equal(t, model.EnvironmentalImpact{}, s.EnvironmentalImpact)
	for _, c := range model.OutwardCategories {
		assert.Zero(t, s.CategoryBreakdown[c])
	}
	require.Len(t, s.WeeklyStats, 4)
	for _, w := range s.WeeklyStats {
		assert.Zero(t, w.Count)
	}
}

func TestStats_Totals(t *testing.T) {
	l, _ := newTestLedger(t, 0)
	for _, r := range []model.ClassificationRecord{
		rec("Plastic Bottle", model.OutwardRecyclable, 8, 85),
		rec("Plastic Bottle", model.OutwardRecyclable, 9, 85),
		rec("Banana Peel", model.OutwardOrganic, 12, 100),
		rec("Battery", model.OutwardHazardous, 20, 30),
	} {
		_, err := l.Save(r)
		require.NoError(t, err)
	}

	s, err := l.Stats()
	require.NoError(t, err)

	assert.Equal(t, 4, s.TotalClassifications)
	assert.Equal(t, 49, s.TotalPoints)
	assert.Equal(t, 75.0, s.AverageRecyclableRate)
	assert.Equal(t, 2, s.CategoryBreakdown[model.OutwardRecyclable])
	assert.Equal(t, 1, s.CategoryBreakdown[model.OutwardHazardous])

	require.Len(t, s.TopItems, 3)
	assert.Equal(t, model.ItemStat{Name: "Plastic Bottle", Count: 2, Points: 17}, s.TopItems[0])
	assert.Equal(t, "Battery", s.TopItems[1].Name)

	assert.Equal(t, model.EnvironmentalImpact{
		ItemsRecycled:  2,
		ItemsComposted: 1,
		WasteReducedKg: 0.55,
		CO2SavedKg:     1.18,
	}, s.EnvironmentalImpact)
}

func TestStats_TopItemsLimited(t *testing.T) {
	records := make([]model.ClassificationRecord, 0, 12)
	for i := 0; i < 12; i++ {
		records = append(records, rec(string(rune('a'+i)), model.OutwardGeneralWaste, 0, 10))
	}
	s := ComputeStats(records, baseTime)
	assert.Len(t, s.TopItems, 10)
	assert.Equal(t, "a", s.TopItems[0].Name)
}

func TestStats_WeeklyWindows(t *testing.T) {
	l, clk := newTestLedger(t, 0)

	for _, at := range []struct {
		offset time.Duration
		points int
	}{
		{-1 * 24 * time.Hour, 5},
		{-2 * 24 * time.Hour, 7},
		{-10 * 24 * time.Hour, 3},
		{-40 * 24 * time.Hour, 100},
	} {
		clk.Set(baseTime.Add(at.offset))
		_, err := l.Save(rec("Can", model.OutwardRecyclable, at.points, 95))
		require.NoError(t, err)
	}
	clk.Set(baseTime)

	s, err := l.Stats()
	require.NoError(t, err)
	require.Len(t, s.WeeklyStats, 4)

	got := make([][2]int, len(s.WeeklyStats))
	for i, w := range s.WeeklyStats {
		got[i] = [2]int{w.Count, w.Points}
	}
	assert.Equal(t, [][2]int{{0, 0}, {0, 0}, {1, 3}, {2, 12}}, got)

	assert.Equal(t, "This week", s.WeeklyStats[3].Label)
	assert.Equal(t, baseTime, s.WeeklyStats[3].End)
	assert.Equal(t, baseTime.Add(-28*24*time.Hour), s.WeeklyStats[0].Start)
}

func TestStats_WeekBoundaries(t *testing.T) {
	now := baseTime
	records := []model.ClassificationRecord{
		{ItemName: "at now", Timestamp: now, Points: 1},
		{ItemName: "exactly one week ago", Timestamp: now.Add(-week), Points: 2},
		{ItemName: "in the future", Timestamp: now.Add(time.Hour), Points: 4},
	}

	weeks := ComputeStats(records, now).WeeklyStats
	assert.Equal(t, 2, weeks[3].Count, "a window start belongs to that window")
	assert.Equal(t, 3, weeks[3].Points, "future records are not counted")
	assert.Zero(t, weeks[2].Count)
}
