// Package pipeline runs the classification cascade: the object detector and
// the single-label classifier in parallel, then the heuristic fallback when
// neither produced a result, reconciled into one verdict.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ppiankov/wastewise/internal/adapters"
	"github.com/ppiankov/wastewise/internal/cache"
	"github.com/ppiankov/wastewise/internal/common"
	"github.com/ppiankov/wastewise/internal/fallback"
	"github.com/ppiankov/wastewise/internal/model"
	"github.com/ppiankov/wastewise/internal/reward"
	"github.com/ppiankov/wastewise/internal/taxonomy"
	"github.com/ppiankov/wastewise/internal/vision"
)

const (
	DefaultAdapterTimeout    = 8 * time.Second
	DefaultOverrideThreshold = 60

	usageHint = "For best results photograph one item at a time against a plain background"
	safetyTip = "If this item contains batteries, chemicals or electronics, treat it as hazardous waste"
)

// DetectionSource finds zero or more items in an image
type DetectionSource interface {
	Detect(ctx context.Context, img vision.Image) ([]model.Detection, error)
}

// LabelSource assigns one label to the whole image; (nil, nil) means no label
type LabelSource interface {
	Classify(ctx context.Context, img vision.Image) (*adapters.LabelResult, error)
}

// FallbackSource never fails
type FallbackSource interface {
	Classify(in fallback.Input) fallback.Result
}

// Options tunes the orchestrator
type Options struct {
	AdapterTimeout    time.Duration // Bound on each AI source call; 0 uses the default
	OverrideThreshold int           // Detector confidence below which the label wins; 0 uses 60
	VerdictCache      cache.Cache   // Optional; nil disables verdict reuse
	VerdictCacheTTL   time.Duration // 0 disables verdict reuse
}

// Orchestrator reconciles every classifier source into one verdict
type Orchestrator struct {
	detector DetectionSource
	labeler  LabelSource
	fallback FallbackSource
	opts     Options
}

// NewOrchestrator wires the sources. detector and labeler may be nil when
// not configured; fb nil uses the built-in heuristic.
func NewOrchestrator(detector DetectionSource, labeler LabelSource, fb FallbackSource, opts Options) *Orchestrator {
	if fb == nil {
		fb = fallback.NewClassifier()
	}
	if opts.AdapterTimeout <= 0 {
		opts.AdapterTimeout = DefaultAdapterTimeout
	}
	if opts.OverrideThreshold <= 0 {
		opts.OverrideThreshold = DefaultOverrideThreshold
	}
	return &Orchestrator{
		detector: detector,
		labeler:  labeler,
		fallback: fb,
		opts:     opts,
	}
}

// sourceOutcome is what one AI source settled with
type sourceOutcome struct {
	detections []model.Detection
	label      *adapters.LabelResult
	err        error
}

// Classify runs the cascade. It only returns an error for missing input;
// every classifier failure degrades to the next source.
func (o *Orchestrator) Classify(ctx context.Context, img *Image) (*model.Verdict, error) {
	if img == nil || len(img.Data) == 0 {
		return nil, common.NewUserError(invalidImageMessage, fmt.Errorf("%w: no image data", common.ErrInvalidInput))
	}

	cacheKey := ""
	if o.cacheEnabled() {
		cacheKey = img.CacheKey()
		if v, ok := o.cachedVerdict(cacheKey); ok {
			return v, nil
		}
	}

	det, lab := o.runSources(ctx, img)
	v := o.reconcile(img, det, lab)

	// Heuristic verdicts depend on the filename and metadata, not the pixels
	if cacheKey != "" && pixelDerived(v.SourceTag) {
		o.storeVerdict(cacheKey, v)
	}
	return v, nil
}

// runSources invokes both AI sources concurrently and waits for both to settle
func (o *Orchestrator) runSources(ctx context.Context, img *Image) (sourceOutcome, sourceOutcome) {
	var det, lab sourceOutcome
	payload := img.Vision()

	var wg sync.WaitGroup
	if o.detector != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(ctx, o.opts.AdapterTimeout)
			defer cancel()
			det = o.guard(model.SourceDetector, func() sourceOutcome {
				d, err := o.detector.Detect(ctx, payload)
				return sourceOutcome{detections: d, err: err}
			})
		}()
	}
	if o.labeler != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(ctx, o.opts.AdapterTimeout)
			defer cancel()
			lab = o.guard(model.SourceClassifier, func() sourceOutcome {
				l, err := o.labeler.Classify(ctx, payload)
				return sourceOutcome{label: l, err: err}
			})
		}()
	}
	wg.Wait()

	if det.err != nil {
		slog.Warn("classifier source unavailable", "source", model.SourceDetector, "file", img.Filename, "error", det.err)
	}
	if lab.err != nil {
		slog.Warn("classifier source unavailable", "source", model.SourceClassifier, "file", img.Filename, "error", lab.err)
	}
	return det, lab
}

// guard turns a panicking source into an unavailable one
func (o *Orchestrator) guard(source model.SourceTag, call func() sourceOutcome) (out sourceOutcome) {
	defer func() {
		if r := recover(); r != nil {
			out = sourceOutcome{err: &adapters.SourceError{Source: source, Err: fmt.Errorf("panic: %v", r)}}
		}
	}()
	return call()
}

func (o *Orchestrator) reconcile(img *Image, det, lab sourceOutcome) *model.Verdict {
	var (
		all        []model.Detection
		primary    model.Detection
		hasPrimary bool
		source     = model.SourceNone
		chain      []model.SourceTag
		tips       []string
		guidance   taxonomy.Guidance
	)

	if det.err == nil && len(det.detections) > 0 {
		all = append(all, det.detections...)
		sortDetections(all)
		primary, hasPrimary, source = all[0], true, model.SourceDetector
		chain = append(chain, model.SourceDetector)
	}

	label := lab.label
	if lab.err != nil || label == nil || strings.TrimSpace(label.Detection.Name) == "" {
		label = nil
	}
	if label != nil {
		chain = append(chain, model.SourceClassifier)
		if !hasPrimary || primary.Confidence < o.opts.OverrideThreshold {
			primary, hasPrimary, source = label.Detection, true, model.SourceClassifier
			tips = append(tips, label.Tips...)
		}
		if !containsName(all, label.Detection.Name) {
			all = append(all, label.Detection)
			sortDetections(all)
		}
	}

	if hasPrimary {
		guidance = taxonomy.GuidanceFor(primary.Category)
		if source == model.SourceDetector {
			tips = append(tips, guidance.Tips...)
		}
	} else {
		res, ok := o.runFallback(img)
		if ok {
			primary, source = res.Detection(), model.SourceFallback
			chain = append(chain, model.SourceFallback)
			guidance = taxonomy.Guidance{Description: res.Item.Description, DisposalMethod: res.Item.DisposalMethod}
			tips = append(tips, res.Item.Tips...)
			if res.ZeroScore {
				tips = append(tips, safetyTip)
			}
		} else {
			unknown := fallback.UnknownItem()
			primary = model.Detection{
				Name:       unknown.Name,
				Category:   unknown.Category,
				Confidence: unknown.BaseConfidence,
				Source:     model.SourceNone,
			}
			guidance = taxonomy.Guidance{Description: unknown.Description, DisposalMethod: unknown.DisposalMethod}
			tips = append(tips, unknown.Tips...)
		}
		all = []model.Detection{primary}
	}

	primary.Confidence = model.ClampConfidence(primary.Confidence)
	r := reward.Calculate(primary.Category, primary.Confidence)

	tips = append(tips, explain(source, chain, len(all), o.opts.OverrideThreshold, len(det.detections) > 0)...)

	return &model.Verdict{
		Primary:        primary,
		AllDetections:  all,
		SourceTag:      source,
		SourceChain:    chain,
		Outward:        taxonomy.Coarsen(primary.Category),
		Points:         r.Points,
		RecyclableRate: r.RecyclableRate,
		Description:    guidance.Description,
		DisposalMethod: guidance.DisposalMethod,
		Tips:           dedupe(tips),
	}
}

// runFallback calls the heuristic. A panic is a contract violation; it is
// logged and reported as not ok so the caller can build an Unknown result.
func (o *Orchestrator) runFallback(img *Image) (res fallback.Result, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("fallback classifier failed", "file", img.Filename, "panic", r, "error", common.ErrExhaustedPipeline)
			res, ok = fallback.Result{}, false
		}
	}()
	return o.fallback.Classify(img.FallbackInput()), true
}

func explain(source model.SourceTag, chain []model.SourceTag, count, threshold int, detected bool) []string {
	var tips []string

	switch source {
	case model.SourceDetector:
		tips = append(tips, "Identified by the object detector")
	case model.SourceClassifier:
		if detected {
			tips = append(tips, fmt.Sprintf("Detector confidence was below %d%%, so the image classifier's label was used", threshold))
		} else {
			tips = append(tips, "Identified by the image classifier")
		}
	case model.SourceFallback:
		tips = append(tips, "AI sources were unavailable, so the item was guessed from the file name and metadata")
	default:
		tips = append(tips, "No classifier could identify this item")
	}

	if len(chain) > 1 {
		names := make([]string, len(chain))
		for i, s := range chain {
			names[i] = string(s)
		}
		tips = append(tips, "Sources consulted: "+strings.Join(names, ", "))
	}

	if count == 1 {
		tips = append(tips, "Detected 1 item")
	} else {
		tips = append(tips, fmt.Sprintf("Detected %d items", count))
	}

	tips = append(tips, usageHint)
	return tips
}

// sortDetections orders by descending confidence, keeping source order on ties
func sortDetections(d []model.Detection) {
	sort.SliceStable(d, func(i, j int) bool { return d[i].Confidence > d[j].Confidence })
}

func containsName(d []model.Detection, name string) bool {
	for _, x := range d {
		if strings.EqualFold(strings.TrimSpace(x.Name), strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

func dedupe(tips []string) []string {
	out := make([]string, 0, len(tips))
	seen := make(map[string]bool, len(tips))
	for _, t := range tips {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func pixelDerived(source model.SourceTag) bool {
	return source == model.SourceDetector || source == model.SourceClassifier
}

func (o *Orchestrator) cacheEnabled() bool {
	return o.opts.VerdictCache != nil && o.opts.VerdictCacheTTL > 0
}

func (o *Orchestrator) cachedVerdict(key string) (*model.Verdict, bool) {
	data, found, err := o.opts.VerdictCache.Get(key)
	if err != nil {
		slog.Debug("verdict cache read failed", "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}

	var v model.Verdict
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, false
	}
	v.Cached = true
	return &v, true
}

func (o *Orchestrator) storeVerdict(key string, v *model.Verdict) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := o.opts.VerdictCache.Set(key, data, o.opts.VerdictCacheTTL); err != nil {
		slog.Debug("verdict cache write failed", "error", err)
	}
}
