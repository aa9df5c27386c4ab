package model

import "time"

// ClassificationRecord is one persisted ledger entry. Records are never mutated
// after they have been appended.
type ClassificationRecord struct {
	ID             string          `json:"id"`
	Timestamp      time.Time       `json:"timestamp"`
	Filename       string          `json:"filename"`
	FileSize       int64           `json:"file_size"`
	ItemName       string          `json:"item_name"`
	Category       OutwardCategory `json:"category"`
	Confidence     int             `json:"confidence"`
	RecyclableRate int             `json:"recyclable_rate"`
	Points         int             `json:"points"`
	Description    string          `json:"description"`
	DisposalMethod string          `json:"disposal_method"`
	Tips           []string        `json:"tips"`
	SessionID      string          `json:"session_id"`
}

// RecordContext carries the request details that are not part of a verdict
type RecordContext struct {
	Filename  string
	FileSize  int64
	SessionID string
}

// NewRecord builds an unsaved record from a verdict. ID and Timestamp are
// assigned by the ledger on save.
func NewRecord(v *Verdict, rc RecordContext) ClassificationRecord {
	tips := make([]string, len(v.Tips))
	copy(tips, v.Tips)

	return ClassificationRecord{
		Filename:       rc.Filename,
		FileSize:       rc.FileSize,
		ItemName:       v.Primary.Name,
		Category:       v.Outward,
		Confidence:     ClampConfidence(v.Primary.Confidence),
		RecyclableRate: ClampConfidence(v.RecyclableRate),
		Points:         max(v.Points, 0),
		Description:    v.Description,
		DisposalMethod: v.DisposalMethod,
		Tips:           tips,
		SessionID:      rc.SessionID,
	}
}

// ClassificationStats is derived on demand from the live record set
type ClassificationStats struct {
	TotalClassifications  int                     `json:"total_classifications"`
	TotalPoints           int                     `json:"total_points"`
	CategoryBreakdown     map[OutwardCategory]int `json:"category_breakdown"`
	AverageRecyclableRate float64                 `json:"average_recyclable_rate"`
	TopItems              []ItemStat              `json:"top_items"`
	WeeklyStats           []WeekStat              `json:"weekly_stats"`
	EnvironmentalImpact   EnvironmentalImpact     `json:"environmental_impact"`
}

// ItemStat aggregates all records sharing an item name
type ItemStat struct {
	Name   string `json:"name"`
	Count  int    `json:"count"`
	Points int    `json:"points"`
}

// WeekStat aggregates records in one seven-day window
type WeekStat struct {
	Label  string    `json:"label"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Count  int       `json:"count"`
	Points int       `json:"points"`
}

// EnvironmentalImpact is an estimate from fixed per-item constants, not a measurement
type EnvironmentalImpact struct {
	ItemsRecycled  int     `json:"items_recycled"`
	ItemsComposted int     `json:"items_composted"`
	WasteReducedKg float64 `json:"waste_reduced_kg"`
	CO2SavedKg     float64 `json:"co2_saved_kg"`
}
