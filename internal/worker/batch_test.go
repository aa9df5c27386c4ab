package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/wastewise/internal/model"
)

// mockClassifier implements Classifier
type mockClassifier struct {
	failOn string
	calls  int32
}

func (m *mockClassifier) ClassifyPath(ctx context.Context, path string) (*model.Verdict, error) {
	atomic.AddInt32(&m.calls, 1)
	time.Sleep(5 * time.Millisecond) // Simulate work
	if m.failOn != "" && strings.Contains(path, m.failOn) {
		return nil, errors.New("undecodable image")
	}
	return &model.Verdict{
		Primary: model.Detection{Name: filepath.Base(path), Confidence: 80},
	}, nil
}

func TestBatchProcessor_ProcessPaths(t *testing.T) {
	classifier := &mockClassifier{}
	processor := NewBatchProcessor(classifier, 2)

	paths := []string{"a/plastic-bottle.jpg", "b/banana.png", "c/can.webp"}
	results := processor.ProcessPaths(context.Background(), paths)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, res := range results {
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Path, res.Error)
		}
		if res.Path != paths[i] || res.Index != i {
			t.Errorf("result %d out of order: %+v", i, res)
		}
		if res.Verdict == nil {
			t.Errorf("expected verdict for %s", res.Path)
		}
	}
}

func TestBatchProcessor_ManyInputs(t *testing.T) {
	classifier := &mockClassifier{}
	processor := NewBatchProcessor(classifier, 3)

	var paths []string
	for i := 0; i < 50; i++ {
		paths = append(paths, filepath.Join("img", string(rune('a'+i%26))+".jpg"))
	}

	var seen int32
	processor.OnResult(func(*ClassifyResult) { atomic.AddInt32(&seen, 1) })

	results := processor.ProcessPaths(context.Background(), paths)
	if len(results) != 50 {
		t.Fatalf("expected 50 results, got %d", len(results))
	}
	if seen != 50 {
		t.Errorf("expected 50 progress callbacks, got %d", seen)
	}
	if classifier.calls != 50 {
		t.Errorf("expected 50 classifications, got %d", classifier.calls)
	}
}

func TestBatchProcessor_ProcessPaths_Error(t *testing.T) {
	processor := NewBatchProcessor(&mockClassifier{failOn: "broken"}, 2)

	results := processor.ProcessPaths(context.Background(), []string{"ok.jpg", "broken.jpg"})
	if results[0].Error != nil {
		t.Errorf("unexpected error: %v", results[0].Error)
	}
	if results[1].Error == nil {
		t.Error("expected error, got nil")
	}
	if results[1].Verdict != nil {
		t.Error("expected nil verdict on error")
	}
}

func TestBatchProcessor_ProcessPaths_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockClassifier{}, 2)

	results := processor.ProcessPaths(context.Background(), []string{})
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchProcessor_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processor := NewBatchProcessor(&mockClassifier{}, 2)
	results := processor.ProcessPaths(ctx, []string{"a.jpg", "b.jpg", "c.jpg"})

	if len(results) != 3 {
		t.Fatalf("expected a result slot per input, got %d", len(results))
	}
	for _, r := range results {
		if r == nil {
			t.Fatal("nil result")
		}
		if r.Error == nil && r.Verdict == nil {
			t.Errorf("result for %s has neither verdict nor error", r.Path)
		}
	}
}

func TestClassifierFunc(t *testing.T) {
	fn := ClassifierFunc(func(ctx context.Context, path string) (*model.Verdict, error) {
		return &model.Verdict{Primary: model.Detection{Name: path}}, nil
	})
	v, err := fn.ClassifyPath(context.Background(), "x.jpg")
	if err != nil || v.Primary.Name != "x.jpg" {
		t.Errorf("unexpected %+v, %v", v, err)
	}
}

func TestReadPathsFromFile(t *testing.T) {
	content := `photos/bottle.jpg
# comment
https://example.com/can.png
   
photos/bottle.jpg
photos/peel.webp   `

	tmpfile := filepath.Join(t.TempDir(), "inputs.txt")
	if err := os.WriteFile(tmpfile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	paths, err := ReadPathsFromFile(tmpfile)
	if err != nil {
		t.Fatalf("ReadPathsFromFile failed: %v", err)
	}

	expected := []string{"photos/bottle.jpg", "https://example.com/can.png", "photos/peel.webp"}
	if len(paths) != len(expected) {
		t.Fatalf("expected %d paths, got %d", len(expected), len(paths))
	}
	for i, p := range paths {
		if p != expected[i] {
			t.Errorf("expected %s at index %d, got %s", expected[i], i, p)
		}
	}
}

func TestReadPathsFromFile_NonExistent(t *testing.T) {
	if _, err := ReadPathsFromFile("non_existent_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	tmpfile := filepath.Join(t.TempDir(), "list.txt")
	if err := os.WriteFile(tmpfile, []byte("a.jpg\nb.jpg\n# skip\n\nc.jpg\n"), 0644); err != nil {
		t.Fatal(err)
	}

	results, err := NewBatchProcessor(&mockClassifier{}, 2).ProcessFile(context.Background(), tmpfile)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestCollectImagePaths(t *testing.T) {
	dir := t.TempDir()
	files := []string{"b.JPG", "a.png", "notes.txt", "sub/c.webp", ".cache/d.jpg"}
	for _, f := range files {
		p := filepath.Join(dir, f)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	paths, err := CollectImagePaths(dir)
	if err != nil {
		t.Fatalf("CollectImagePaths failed: %v", err)
	}

	expected := []string{filepath.Join(dir, "a.png"), filepath.Join(dir, "b.JPG"), filepath.Join(dir, "sub", "c.webp")}
	if len(paths) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, paths)
	}
	for i := range expected {
		if paths[i] != expected[i] {
			t.Errorf("index %d: expected %s, got %s", i, expected[i], paths[i])
		}
	}
}

func TestClassifyResult_GetError(t *testing.T) {
	r1 := &ClassifyResult{Path: "a.jpg"}
	if r1.GetError() != nil {
		t.Errorf("expected nil error, got %v", r1.GetError())
	}

	expected := errors.New("classify failed")
	r2 := &ClassifyResult{Path: "a.jpg", Error: expected}
	if r2.GetError() != expected {
		t.Errorf("expected %v, got %v", expected, r2.GetError())
	}
}
