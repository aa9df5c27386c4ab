// Package ledger keeps the append-only history of classification records.
//
// The whole history is one JSON blob under a single cache key. Every mutation
// is a read-modify-write of that blob, serialized by a mutex so concurrent
// saves cannot lose each other's records.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/wastewise/internal/cache"
	"github.com/ppiankov/wastewise/internal/common"
	"github.com/ppiankov/wastewise/internal/model"
)

const (
	DefaultCap = 1000
	DefaultKey = "history"

	blobVersion = 1
)

// Options configures a Ledger
type Options struct {
	Key string           // Name of the history within the store
	Cap int              // Maximum records kept; oldest are evicted first
	Now func() time.Time // Clock; defaults to time.Now
}

// Ledger is the durable classification history
type Ledger struct {
	kv    cache.Cache
	key   string
	cap   int
	now   func() time.Time
	newID func() string

	mu sync.Mutex
}

// blob is the persisted and exported shape
type blob struct {
	Version    int                          `json:"version"`
	ExportedAt *time.Time                   `json:"exported_at,omitempty"`
	Records    []model.ClassificationRecord `json:"records"` // Oldest first
}

// New creates a ledger over store
func New(store cache.Cache, opts Options) *Ledger {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.Cap <= 0 {
		opts.Cap = DefaultCap
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Ledger{
		kv:    store,
		key:   cache.Key("ledger", opts.Key),
		cap:   opts.Cap,
		now:   opts.Now,
		newID: uuid.NewString,
	}
}

// NewFromConfig creates a ledger from the ledger config section
func NewFromConfig(store cache.Cache, cfg model.LedgerConfig) *Ledger {
	return New(store, Options{Key: cfg.Key, Cap: cfg.Cap})
}

// Save assigns an id and timestamp to rec, appends it and evicts the oldest
// records beyond the cap. A persistence failure wraps common.ErrLedgerWrite.
func (l *Ledger) Save(rec model.ClassificationRecord) (model.ClassificationRecord, error) {
	rec.ID = l.newID()
	rec.Timestamp = l.now().UTC()
	if rec.Tips == nil {
		rec.Tips = []string{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.load()
	if err != nil {
		return rec, fmt.Errorf("%w: %w", common.ErrLedgerWrite, err)
	}

	records = append(records, rec)
	if over := len(records) - l.cap; over > 0 {
		records = records[over:]
	}

	if err := l.persist(records); err != nil {
		return rec, fmt.Errorf("%w: %w", common.ErrLedgerWrite, err)
	}
	return rec, nil
}

// Record converts a verdict into a record and saves it. A write failure is
// logged and swallowed; the returned record is still complete.
func (l *Ledger) Record(v *model.Verdict, rc model.RecordContext) model.ClassificationRecord {
	rec, err := l.Save(model.NewRecord(v, rc))
	if err != nil {
		slog.Error("failed to record classification", "item", rec.ItemName, "file", rc.Filename, "error", err)
	}
	return rec
}

// Records returns every record, newest first
func (l *Ledger) Records() ([]model.ClassificationRecord, error) {
	records, err := l.snapshot()
	if err != nil {
		return nil, err
	}
	return newestFirst(records), nil
}

// Get returns one record by id
func (l *Ledger) Get(id string) (model.ClassificationRecord, error) {
	records, err := l.snapshot()
	if err != nil {
		return model.ClassificationRecord{}, err
	}
	for _, r := range records {
		if r.ID == id {
			return r, nil
		}
	}
	return model.ClassificationRecord{}, fmt.Errorf("%w: record %s", common.ErrNotFound, id)
}

// Len returns the number of stored records
func (l *Ledger) Len() (int, error) {
	records, err := l.snapshot()
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// Clear removes the whole history
func (l *Ledger) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.kv.Delete(l.key); err != nil {
		return fmt.Errorf("%w: %w", common.ErrLedgerWrite, err)
	}
	return nil
}

func (l *Ledger) snapshot() ([]model.ClassificationRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

// load reads the blob; the caller holds l.mu
func (l *Ledger) load() ([]model.ClassificationRecord, error) {
	data, found, err := l.kv.Get(l.key)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	if !found || len(data) == 0 {
		return nil, nil
	}

	records, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode ledger: %w", err)
	}
	return records, nil
}

// persist writes the blob; the caller holds l.mu
func (l *Ledger) persist(records []model.ClassificationRecord) error {
	data, err := json.Marshal(blob{Version: blobVersion, Records: records})
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := l.kv.Set(l.key, data, cache.NoExpiration); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}

// decode accepts the versioned envelope or a bare record array
func decode(data []byte) ([]model.ClassificationRecord, error) {
	var b blob
	if err := json.Unmarshal(data, &b); err == nil {
		if b.Version == 0 {
			return nil, errors.New("missing ledger version")
		}
		if b.Version > blobVersion {
			return nil, fmt.Errorf("unsupported ledger version %d", b.Version)
		}
		return b.Records, nil
	}

	var records []model.ClassificationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.New("not a ledger export")
	}
	return records, nil
}

func newestFirst(records []model.ClassificationRecord) []model.ClassificationRecord {
	out := make([]model.ClassificationRecord, len(records))
	for i, r := range records {
		out[len(records)-1-i] = r
	}
	return out
}
