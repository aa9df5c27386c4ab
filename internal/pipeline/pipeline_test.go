package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/wastewise/internal/adapters"
	"github.com/ppiankov/wastewise/internal/cache"
	"github.com/ppiankov/wastewise/internal/common"
	"github.com/ppiankov/wastewise/internal/fallback"
	"github.com/ppiankov/wastewise/internal/model"
	"github.com/ppiankov/wastewise/internal/vision"
)

type stubDetector struct {
	detections []model.Detection
	err        error
	delay      time.Duration
	calls      atomic.Int32
}

func (s *stubDetector) Detect(ctx context.Context, _ vision.Image) ([]model.Detection, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.detections, s.err
}

type stubLabeler struct {
	result *adapters.LabelResult
	err    error
	panics bool
}

func (s *stubLabeler) Classify(_ context.Context, _ vision.Image) (*adapters.LabelResult, error) {
	if s.panics {
		panic("labeler exploded")
	}
	return s.result, s.err
}

type panickingFallback struct{}

func (panickingFallback) Classify(fallback.Input) fallback.Result {
	panic("item database corrupt")
}

func det(name string, category model.WasteCategory, confidence int) model.Detection {
	return model.Detection{Name: name, Category: category, Confidence: confidence, Source: model.SourceDetector}
}

func label(name string, category model.WasteCategory, confidence int) *adapters.LabelResult {
	return &adapters.LabelResult{
		Detection: model.Detection{Name: name, Category: category, Confidence: confidence, Source: model.SourceClassifier},
		Tips:      []string{"Labelled by test"},
	}
}

func assertSorted(t *testing.T, d []model.Detection) {
	t.Helper()
	for i := 1; i < len(d); i++ {
		assert.GreaterOrEqual(t, d[i-1].Confidence, d[i].Confidence, "detections must be non-increasing")
	}
}

func TestClassify_DetectorPrimary(t *testing.T) {
	detector := &stubDetector{detections: []model.Detection{
		det("banana", model.CategoryOrganic, 40),
		det("bottle", model.CategoryPlastic, 90),
	}}
	o := NewOrchestrator(detector, nil, nil, Options{})

	v, err := o.Classify(context.Background(), testImage(t, "kitchen.png"))
	require.NoError(t, err)

	assert.Equal(t, "bottle", v.Primary.Name)
	assert.Equal(t, model.SourceDetector, v.SourceTag)
	assert.Equal(t, model.OutwardRecyclable, v.Outward)
	assert.Equal(t, 9, v.Points)
	assert.Equal(t, 85, v.RecyclableRate)
	assert.Len(t, v.AllDetections, 2)
	assertSorted(t, v.AllDetections)
	assert.Contains(t, v.Tips, "Detected 2 items")
	assert.NotEmpty(t, v.DisposalMethod)
}

func TestClassify_ConfidentDetectorNotOverridden(t *testing.T) {
	detector := &stubDetector{detections: []model.Detection{det("can", model.CategoryMetal, 60)}}
	labeler := &stubLabeler{result: label("aluminium foil", model.CategoryMetal, 95)}
	o := NewOrchestrator(detector, labeler, nil, Options{})

	v, err := o.Classify(context.Background(), testImage(t, "x.png"))
	require.NoError(t, err)

	assert.Equal(t, "can", v.Primary.Name)
	assert.Equal(t, model.SourceDetector, v.SourceTag)
	assert.Equal(t, []model.SourceTag{model.SourceDetector, model.SourceClassifier}, v.SourceChain)
	require.Len(t, v.AllDetections, 2)
	assert.Equal(t, "aluminium foil", v.AllDetections[0].Name)
	assertSorted(t, v.AllDetections)
}

func TestClassify_LabelOverridesWeakDetector(t *testing.T) {
	detector := &stubDetector{detections: []model.Detection{
		det("cup", model.CategoryPaper, 59),
		det("bottle", model.CategoryPlastic, 45),
	}}
	labeler := &stubLabeler{result: label("Glass Jar", model.CategoryGlass, 50)}
	o := NewOrchestrator(detector, labeler, nil, Options{})

	v, err := o.Classify(context.Background(), testImage(t, "x.png"))
	require.NoError(t, err)

	assert.Equal(t, "Glass Jar", v.Primary.Name)
	assert.Equal(t, model.SourceClassifier, v.SourceTag)
	assert.Equal(t, 95, v.RecyclableRate)
	assert.Equal(t, 5, v.Points)
	require.Len(t, v.AllDetections, 3)
	assert.Equal(t, []string{"cup", "Glass Jar", "bottle"}, names(v.AllDetections))
	assert.Contains(t, v.Tips, "Labelled by test")
}

func TestClassify_LabelDedupedCaseInsensitive(t *testing.T) {
	detector := &stubDetector{detections: []model.Detection{det("bottle", model.CategoryPlastic, 50)}}
	labeler := &stubLabeler{result: label("Bottle", model.CategoryPlastic, 80)}
	o := NewOrchestrator(detector, labeler, nil, Options{})

	v, err := o.Classify(context.Background(), testImage(t, "x.png"))
	require.NoError(t, err)

	assert.Equal(t, "Bottle", v.Primary.Name)
	assert.Equal(t, 80, v.Primary.Confidence)
	require.Len(t, v.AllDetections, 1)
	assert.Equal(t, "bottle", v.AllDetections[0].Name)
}

func TestClassify_LabelOnly(t *testing.T) {
	labeler := &stubLabeler{result: label("banana peel", model.CategoryOrganic, 70)}
	o := NewOrchestrator(&stubDetector{}, labeler, nil, Options{})

	v, err := o.Classify(context.Background(), testImage(t, "x.png"))
	require.NoError(t, err)

	assert.Equal(t, model.SourceClassifier, v.SourceTag)
	assert.Equal(t, model.OutwardOrganic, v.Outward)
	assert.Equal(t, 10, v.Points)
	assert.Len(t, v.AllDetections, 1)
}

func TestClassify_FallbackWhenSourcesFail(t *testing.T) {
	detector := &stubDetector{err: errors.New("connection refused")}
	labeler := &stubLabeler{err: &adapters.SourceError{Source: model.SourceClassifier, Err: errors.New("no key")}}
	o := NewOrchestrator(detector, labeler, nil, Options{})

	v, err := o.Classify(context.Background(), testImage(t, "plastic-bottle.png"))
	require.NoError(t, err)

	assert.Equal(t, model.SourceFallback, v.SourceTag)
	assert.Equal(t, "Plastic Bottle", v.Primary.Name)
	assert.Equal(t, 85, v.RecyclableRate)
	assert.GreaterOrEqual(t, v.Primary.Confidence, 70)
	assert.Equal(t, []model.SourceTag{model.SourceFallback}, v.SourceChain)
	assert.Equal(t, []model.Detection{v.Primary}, v.AllDetections)
}

func TestClassify_FallbackWithNoSources(t *testing.T) {
	o := NewOrchestrator(nil, nil, nil, Options{})

	v, err := o.Classify(context.Background(), testImage(t, "IMG_0001.png"))
	require.NoError(t, err)

	assert.Equal(t, model.SourceFallback, v.SourceTag)
	assert.NotEqual(t, model.OutwardHazardous, v.Outward)
	assert.Contains(t, v.Tips, safetyTip)
}

func TestClassify_EmptyLabelIsEmpty(t *testing.T) {
	labeler := &stubLabeler{result: label("  ", model.CategoryOther, 90)}
	o := NewOrchestrator(nil, labeler, nil, Options{})

	v, err := o.Classify(context.Background(), testImage(t, "glass-jar.png"))
	require.NoError(t, err)
	assert.Equal(t, model.SourceFallback, v.SourceTag)
}

func TestClassify_LabelerPanicIsContained(t *testing.T) {
	detector := &stubDetector{detections: []model.Detection{det("bottle", model.CategoryPlastic, 90)}}
	o := NewOrchestrator(detector, &stubLabeler{panics: true}, nil, Options{})

	v, err := o.Classify(context.Background(), testImage(t, "x.png"))
	require.NoError(t, err)
	assert.Equal(t, "bottle", v.Primary.Name)
}

func TestClassify_FallbackPanicYieldsUnknown(t *testing.T) {
	o := NewOrchestrator(nil, nil, panickingFallback{}, Options{})

	v, err := o.Classify(context.Background(), testImage(t, "x.png"))
	require.NoError(t, err)

	assert.Equal(t, "Unknown Item", v.Primary.Name)
	assert.Equal(t, model.SourceNone, v.SourceTag)
	assert.Equal(t, model.OutwardGeneralWaste, v.Outward)
	assert.LessOrEqual(t, v.Primary.Confidence, 20)
	assert.Empty(t, v.SourceChain)
}

func TestClassify_SlowDetectorTimesOut(t *testing.T) {
	detector := &stubDetector{
		detections: []model.Detection{det("bottle", model.CategoryPlastic, 90)},
		delay:      time.Second,
	}
	o := NewOrchestrator(detector, nil, nil, Options{AdapterTimeout: 20 * time.Millisecond})

	start := time.Now()
	v, err := o.Classify(context.Background(), testImage(t, "aluminium-can.png"))
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, model.SourceFallback, v.SourceTag)
}

func TestClassify_InvalidInput(t *testing.T) {
	detector := &stubDetector{}
	o := NewOrchestrator(detector, nil, nil, Options{})

	_, err := o.Classify(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	assert.Zero(t, detector.calls.Load())

	_, err = NewImage("notes.txt", []byte("not an image"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	assert.NotEmpty(t, common.UserMessage(err))
}

func TestClassify_VerdictCache(t *testing.T) {
	detector := &stubDetector{detections: []model.Detection{det("bottle", model.CategoryPlastic, 90)}}
	o := NewOrchestrator(detector, nil, nil, Options{
		VerdictCache:    cache.NewMemoryCache(time.Minute, time.Minute),
		VerdictCacheTTL: time.Minute,
	})
	img := testImage(t, "x.png")

	first, err := o.Classify(context.Background(), img)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := o.Classify(context.Background(), img)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Primary, second.Primary)
	assert.Equal(t, int32(1), detector.calls.Load())
}

func TestClassify_VerdictCacheSkipsFallback(t *testing.T) {
	o := NewOrchestrator(nil, nil, nil, Options{
		VerdictCache:    cache.NewMemoryCache(time.Minute, time.Minute),
		VerdictCacheTTL: time.Minute,
	})

	bottle, err := o.Classify(context.Background(), testImage(t, "plastic-bottle.png"))
	require.NoError(t, err)
	assert.Equal(t, model.SourceFallback, bottle.SourceTag)
	assert.Equal(t, model.OutwardRecyclable, bottle.Outward)

	peel, err := o.Classify(context.Background(), testImage(t, "banana-peel.png"))
	require.NoError(t, err)
	assert.False(t, peel.Cached, "same pixels under another name must be classified again")
	assert.Equal(t, model.OutwardOrganic, peel.Outward)
	assert.Equal(t, 100, peel.RecyclableRate)
	assert.NotEqual(t, bottle.Primary.Name, peel.Primary.Name)
}

func TestImage_CacheKey(t *testing.T) {
	a := testImage(t, "a.png")
	b := testImage(t, "b.png")
	assert.Equal(t, a.CacheKey(), b.CacheKey(), "identical pixels share a key")

	other, err := NewImage("c.png", pngBytes(t, 64, 64, 120))
	require.NoError(t, err)
	assert.NotEqual(t, a.CacheKey(), other.CacheKey())
}

func names(d []model.Detection) []string {
	out := make([]string, len(d))
	for i, x := range d {
		out[i] = x.Name
	}
	return out
}
