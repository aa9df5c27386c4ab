package adapters

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/wastewise/internal/model"
	"github.com/ppiankov/wastewise/internal/taxonomy"
	"github.com/ppiankov/wastewise/internal/vision"
)

// LabelResult is the single-label source normalized to a detection plus
// category guidance tips
type LabelResult struct {
	Detection model.Detection
	Tips      []string
}

// LabelerAdapter wraps a whole-image labeler
type LabelerAdapter struct {
	loader *Loader[vision.Labeler]
}

// NewLabelerAdapter creates an adapter
func NewLabelerAdapter(loader *Loader[vision.Labeler]) *LabelerAdapter {
	return &LabelerAdapter{loader: loader}
}

// NewLabelerLoader builds a loader that constructs the configured provider
// and checks it is reachable
func NewLabelerLoader(cfg vision.Config, retryAfter time.Duration) *Loader[vision.Labeler] {
	return NewLoader("classifier", retryAfter, func(ctx context.Context) (vision.Labeler, error) {
		l, err := vision.NewLabeler(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if l == nil {
			return nil, fmt.Errorf("no vision provider configured")
		}
		if !l.IsAvailable(ctx) {
			return nil, fmt.Errorf("%s provider is not reachable", l.Name())
		}
		return l, nil
	})
}

// Classify labels the whole image. An empty label is reported as (nil, nil);
// load or inference failures are a *SourceError.
func (a *LabelerAdapter) Classify(ctx context.Context, img vision.Image) (*LabelResult, error) {
	labeler, err := a.loader.Get(ctx)
	if err != nil {
		return nil, unavailable(model.SourceClassifier, err)
	}

	label, err := labeler.Label(ctx, img)
	if err != nil {
		return nil, unavailable(model.SourceClassifier, err)
	}
	if label == nil || strings.TrimSpace(label.Label) == "" {
		return nil, nil
	}

	name := strings.TrimSpace(label.Label)
	category := taxonomy.MapRawLabel(name)

	tips := taxonomy.GuidanceFor(category).Tips
	if label.Model != "" {
		tips = append(tips, fmt.Sprintf("Labelled by %s (%s)", labeler.Name(), label.Model))
	}

	return &LabelResult{
		Detection: model.Detection{
			Name:       name,
			Category:   category,
			Confidence: ScoreToConfidence(label.Score),
			Source:     model.SourceClassifier,
		},
		Tips: tips,
	}, nil
}
