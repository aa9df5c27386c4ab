package ledger

import (
	"strings"
	"time"

	"github.com/ppiankov/wastewise/internal/model"
)

// Query filters records. Zero fields do not filter.
type Query struct {
	Text     string                // Case-insensitive match on item name, filename or description
	Category model.OutwardCategory // Exact outward category
	Since    time.Time             // Inclusive
	Until    time.Time             // Inclusive
}

// Match reports whether r satisfies every set field
func (q Query) Match(r model.ClassificationRecord) bool {
	if q.Category != "" && r.Category != q.Category {
		return false
	}
	if !q.Since.IsZero() && r.Timestamp.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && r.Timestamp.After(q.Until) {
		return false
	}
	if text := strings.ToLower(strings.TrimSpace(q.Text)); text != "" {
		return strings.Contains(strings.ToLower(r.ItemName), text) ||
			strings.Contains(strings.ToLower(r.Filename), text) ||
			strings.Contains(strings.ToLower(r.Description), text)
	}
	return true
}

// Find returns matching records, newest first
func (l *Ledger) Find(q Query) ([]model.ClassificationRecord, error) {
	records, err := l.snapshot()
	if err != nil {
		return nil, err
	}

	out := []model.ClassificationRecord{}
	for i := len(records) - 1; i >= 0; i-- {
		if q.Match(records[i]) {
			out = append(out, records[i])
		}
	}
	return out, nil
}

// Search matches text against item name, filename and description. An empty
// text returns every record.
func (l *Ledger) Search(text string) ([]model.ClassificationRecord, error) {
	return l.Find(Query{Text: text})
}

// ByCategory returns the records of one outward category
func (l *Ledger) ByCategory(c model.OutwardCategory) ([]model.ClassificationRecord, error) {
	return l.Find(Query{Category: c})
}

// Recent returns records from the last days days. days <= 0 matches nothing.
func (l *Ledger) Recent(days int) ([]model.ClassificationRecord, error) {
	if days <= 0 {
		return []model.ClassificationRecord{}, nil
	}
	now := l.now()
	return l.Find(Query{Since: now.Add(-time.Duration(days) * 24 * time.Hour), Until: now})
}
