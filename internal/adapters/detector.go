package adapters

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/wastewise/internal/model"
	"github.com/ppiankov/wastewise/internal/taxonomy"
	"github.com/ppiankov/wastewise/internal/vision"
)

// DefaultDetectionThreshold drops detections below this confidence
const DefaultDetectionThreshold = 35

// DetectorAdapter turns raw detector output into ranked detections
type DetectorAdapter struct {
	loader    *Loader[vision.Detector]
	threshold int
}

// NewDetectorAdapter creates an adapter. threshold <= 0 uses the default.
func NewDetectorAdapter(loader *Loader[vision.Detector], threshold int) *DetectorAdapter {
	if threshold <= 0 {
		threshold = DefaultDetectionThreshold
	}
	return &DetectorAdapter{loader: loader, threshold: threshold}
}

// NewHTTPDetectorLoader builds a loader that health-checks the detection service
// health endpoint before handing out the client
func NewHTTPDetectorLoader(opts vision.DetectorOptions, retryAfter time.Duration) *Loader[vision.Detector] {
	return NewLoader("detector", retryAfter, func(ctx context.Context) (vision.Detector, error) {
		d, err := vision.NewHTTPDetector(opts)
		if err != nil {
			return nil, err
		}
		if _, err := d.Health(ctx); err != nil {
			return nil, err
		}
		return d, nil
	})
}

// Detect returns detections at or above the threshold, sorted by descending
// confidence. Any load or inference failure is a *SourceError.
func (a *DetectorAdapter) Detect(ctx context.Context, img vision.Image) ([]model.Detection, error) {
	detector, err := a.loader.Get(ctx)
	if err != nil {
		return nil, unavailable(model.SourceDetector, err)
	}

	raw, err := detector.Detect(ctx, img)
	if err != nil {
		return nil, unavailable(model.SourceDetector, err)
	}

	return a.normalize(raw), nil
}

func (a *DetectorAdapter) normalize(raw []vision.RawDetection) []model.Detection {
	out := make([]model.Detection, 0, len(raw))
	for _, r := range raw {
		name := strings.TrimSpace(r.Class)
		if name == "" {
			continue
		}
		conf := ScoreToConfidence(r.Score)
		if conf < a.threshold {
			continue
		}

		d := model.Detection{
			Name:       name,
			Category:   taxonomy.MapRawLabel(name),
			Confidence: conf,
			Source:     model.SourceDetector,
		}
		if len(r.BBox) == 4 {
			d.BoundingBox = &model.BoundingBox{X: r.BBox[0], Y: r.BBox[1], Width: r.BBox[2], Height: r.BBox[3]}
		}
		out = append(out, d)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	return out
}

// ScoreToConfidence converts a 0..1 score to an integer percentage in [0,100]
func ScoreToConfidence(score float64) int {
	if math.IsNaN(score) {
		return 0
	}
	return model.ClampConfidence(int(math.Round(score * 100)))
}
