package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ppiankov/wastewise/internal/adapters"
	"github.com/ppiankov/wastewise/internal/cache"
	"github.com/ppiankov/wastewise/internal/fallback"
	"github.com/ppiankov/wastewise/internal/ledger"
	"github.com/ppiankov/wastewise/internal/model"
	"github.com/ppiankov/wastewise/internal/pipeline"
	"github.com/ppiankov/wastewise/internal/vision"
	"github.com/ppiankov/wastewise/internal/worker"
)

// app is the wired set of components shared by every command
type app struct {
	cfg          *model.Config
	ledger       *ledger.Ledger
	orchestrator *pipeline.Orchestrator
	fetcher      *pipeline.Fetcher
	fetchOpts    pipeline.FetcherOptions
	closeStore   func() error
}

// newApp opens the ledger store and wires the classifier cascade
func newApp(ctx context.Context, cfg *model.Config) (*app, error) {
	store, closeStore, err := cache.Open(ctx, cfg.Ledger)
	if err != nil {
		return nil, fmt.Errorf("open ledger store: %w", err)
	}

	limiter := worker.NewLimiterFromConfig(cfg.RateLimiting)

	var detector pipeline.DetectionSource
	if cfg.Detector.Endpoint != "" {
		loader := adapters.NewHTTPDetectorLoader(vision.DetectorOptions{
			Endpoint:   cfg.Detector.Endpoint,
			Timeout:    cfg.Detector.Timeout,
			HTTPProxy:  cfg.HTTP.HTTPProxy,
			HTTPSProxy: cfg.HTTP.HTTPSProxy,
			NoProxy:    cfg.HTTP.NoProxy,
			Limiter:    limiter,
		}, cfg.Pipeline.LoaderRetryAfter)
		detector = adapters.NewDetectorAdapter(loader, cfg.Detector.Threshold)
	}

	var labeler pipeline.LabelSource
	visionCfg := vision.ConfigFromModel(cfg.Classifier, cfg.HTTP)
	visionCfg.Limiter = limiter
	if visionCfg.Provider != "" {
		labeler = adapters.NewLabelerAdapter(adapters.NewLabelerLoader(visionCfg, cfg.Pipeline.LoaderRetryAfter))
	}

	opts := pipeline.Options{
		AdapterTimeout:    cfg.Pipeline.AdapterTimeout,
		OverrideThreshold: cfg.Pipeline.OverrideThreshold,
		VerdictCacheTTL:   cfg.Pipeline.VerdictCacheTTL,
	}
	if opts.VerdictCacheTTL > 0 {
		opts.VerdictCache = cache.NewMemoryCache(opts.VerdictCacheTTL, 2*opts.VerdictCacheTTL)
	}

	slog.Debug("classifier cascade configured",
		"detector", cfg.Detector.Endpoint != "",
		"classifier", visionCfg.Provider,
		"ledger", cfg.Ledger.Backend)

	fetchOpts := pipeline.FetcherOptions{
		Timeout:       cfg.Fetch.Timeout,
		UserAgent:     cfg.Fetch.UserAgent,
		MaxBytes:      cfg.Fetch.MaxBytes,
		RespectRobots: cfg.Fetch.RespectRobots,
		HTTPProxy:     cfg.HTTP.HTTPProxy,
		HTTPSProxy:    cfg.HTTP.HTTPSProxy,
		NoProxy:       cfg.HTTP.NoProxy,
		Limiter:       limiter,
	}

	return &app{
		cfg:          cfg,
		ledger:       ledger.NewFromConfig(store, cfg.Ledger),
		orchestrator: pipeline.NewOrchestrator(detector, labeler, fallback.NewClassifier(), opts),
		fetcher:      pipeline.NewFetcher(fetchOpts),
		fetchOpts:    fetchOpts,
		closeStore:   closeStore,
	}, nil
}

// publicFetcher downloads only from publicly routable hosts. URLs handed in
// by remote clients go through it.
func (a *app) publicFetcher() *pipeline.Fetcher {
	opts := a.fetchOpts
	opts.PublicOnly = true
	return pipeline.NewFetcher(opts)
}

// Close releases the ledger store
func (a *app) Close() {
	if a.closeStore == nil {
		return
	}
	if err := a.closeStore(); err != nil {
		slog.Warn("failed to close ledger store", "error", err)
	}
}

// loadInput reads a local path or downloads an http(s) URL
func (a *app) loadInput(ctx context.Context, input string) (*pipeline.Image, error) {
	if isURL(input) {
		return a.fetcher.FetchWithRetry(ctx, input)
	}
	return pipeline.LoadImage(input, a.cfg.Fetch.MaxBytes)
}

// classifyAndRecord classifies one input and appends it to the history
func (a *app) classifyAndRecord(ctx context.Context, input, session string) (*model.Verdict, model.ClassificationRecord, error) {
	img, err := a.loadInput(ctx, input)
	if err != nil {
		return nil, model.ClassificationRecord{}, err
	}

	verdict, err := a.orchestrator.Classify(ctx, img)
	if err != nil {
		return nil, model.ClassificationRecord{}, err
	}

	record := a.ledger.Record(verdict, recordContext(img, session))
	return verdict, record, nil
}

func recordContext(img *pipeline.Image, session string) model.RecordContext {
	return model.RecordContext{
		Filename:  img.Filename,
		FileSize:  img.Size,
		SessionID: session,
	}
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
