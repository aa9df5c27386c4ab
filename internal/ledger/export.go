package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/ppiankov/wastewise/internal/common"
	"github.com/ppiankov/wastewise/internal/model"
)

// Export serializes the whole history
func (l *Ledger) Export() ([]byte, error) {
	records, err := l.snapshot()
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.ClassificationRecord{}
	}

	exportedAt := l.now().UTC()
	data, err := json.MarshalIndent(blob{Version: blobVersion, ExportedAt: &exportedAt, Records: records}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return data, nil
}

// Import replaces the whole history with an export. Records keep their ids
// and timestamps; nothing is merged. Only the newest cap records are kept.
func (l *Ledger) Import(data []byte) (int, error) {
	records, err := decode(data)
	if err != nil {
		return 0, common.NewUserError(
			"choose a file produced by wastewise export",
			fmt.Errorf("%w: %w", common.ErrInvalidInput, err))
	}
	if err := validateImport(records); err != nil {
		return 0, common.NewUserError("the export file is damaged: "+err.Error(),
			fmt.Errorf("%w: %w", common.ErrInvalidInput, err))
	}
	if over := len(records) - l.cap; over > 0 {
		records = records[over:]
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.persist(records); err != nil {
		return 0, fmt.Errorf("%w: %w", common.ErrLedgerWrite, err)
	}
	return len(records), nil
}

// validateImport checks every record against the invariants Save guarantees
// and canonicalizes category names in place
func validateImport(records []model.ClassificationRecord) error {
	seen := make(map[string]bool, len(records))
	for i := range records {
		r := &records[i]
		switch {
		case r.ID == "":
			return fmt.Errorf("record %d has no id", i+1)
		case seen[r.ID]:
			return fmt.Errorf("record id %s appears more than once", r.ID)
		case r.Confidence < 0 || r.Confidence > 100:
			return fmt.Errorf("record %s has confidence %d outside 0-100", r.ID, r.Confidence)
		case r.RecyclableRate < 0 || r.RecyclableRate > 100:
			return fmt.Errorf("record %s has recyclable rate %d outside 0-100", r.ID, r.RecyclableRate)
		case r.Points < 0:
			return fmt.Errorf("record %s has negative points", r.ID)
		}
		seen[r.ID] = true

		c, ok := model.ParseOutwardCategory(string(r.Category))
		if !ok {
			return fmt.Errorf("record %s has unknown category %q", r.ID, r.Category)
		}
		r.Category = c
	}
	return nil
}
