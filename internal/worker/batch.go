package worker

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/wastewise/internal/model"
)

// Classifier classifies one image given its path or URL
type Classifier interface {
	ClassifyPath(ctx context.Context, path string) (*model.Verdict, error)
}

// ClassifierFunc adapts a function to Classifier
type ClassifierFunc func(ctx context.Context, path string) (*model.Verdict, error)

// ClassifyPath calls f
func (f ClassifierFunc) ClassifyPath(ctx context.Context, path string) (*model.Verdict, error) {
	return f(ctx, path)
}

// ClassifyJob classifies one input
type ClassifyJob struct {
	Index      int
	Path       string
	Classifier Classifier
}

// Execute executes the classification job
func (j *ClassifyJob) Execute(ctx context.Context) Result {
	verdict, err := j.Classifier.ClassifyPath(ctx, j.Path)
	return &ClassifyResult{
		Index:   j.Index,
		Path:    j.Path,
		Verdict: verdict,
		Error:   err,
	}
}

// ClassifyResult is the outcome of one ClassifyJob
type ClassifyResult struct {
	Index   int
	Path    string
	Verdict *model.Verdict
	Error   error
}

// GetError returns the error from the classification
func (r *ClassifyResult) GetError() error {
	return r.Error
}

// BatchProcessor classifies many inputs concurrently
type BatchProcessor struct {
	classifier  Classifier
	concurrency int
	onResult    func(*ClassifyResult)
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(classifier Classifier, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		classifier:  classifier,
		concurrency: concurrency,
	}
}

// OnResult registers a callback invoked from the collecting goroutine as each
// result arrives (e.g. to advance a progress bar)
func (b *BatchProcessor) OnResult(fn func(*ClassifyResult)) {
	b.onResult = fn
}

// ProcessPaths classifies every path and returns results in input order
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*ClassifyResult {
	if len(paths) == 0 {
		return []*ClassifyResult{}
	}

	pool := NewPoolWithContext(ctx, b.concurrency)
	pool.Start()

	go func() {
		defer pool.Close()
		for i, path := range paths {
			if !pool.Submit(&ClassifyJob{Index: i, Path: path, Classifier: b.classifier}) {
				return
			}
		}
	}()

	out := make([]*ClassifyResult, len(paths))
	for res := range pool.Results() {
		r := res.(*ClassifyResult)
		out[r.Index] = r
		if b.onResult != nil {
			b.onResult(r)
		}
	}

	// jobs never started because ctx was canceled
	for i, r := range out {
		if r == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			out[i] = &ClassifyResult{Index: i, Path: paths[i], Error: err}
		}
	}

	return out
}

// ProcessFile reads inputs from a list file and classifies them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ClassifyResult, error) {
	paths, err := ReadPathsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read inputs: %w", err)
	}

	return b.ProcessPaths(ctx, paths), nil
}

// ReadPathsFromFile reads image paths or URLs from a file (one per line)
func ReadPathsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".bmp": true, ".tif": true, ".tiff": true,
}

// CollectImagePaths walks dir and returns image files sorted by path.
// Hidden directories are skipped.
func CollectImagePaths(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if imageExtensions[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	sort.Strings(paths)
	return paths, nil
}
