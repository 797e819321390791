package fileproc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
)

func TestMapFiles(t *testing.T) {
	tmpDir := t.TempDir()

	files := []string{
		createTestFile(t, tmpDir, "file1.js", "var a;"),
		createTestFile(t, tmpDir, "file2.js", "var b;"),
		createTestFile(t, tmpDir, "file3.js", "var c;"),
	}

	results, errs := MapFiles(context.Background(), files, 2, func(ctx context.Context, path string) (string, error) {
		return filepath.Base(path), nil
	}, nil)

	if errs != nil {
		t.Errorf("Unexpected errors: %v", errs)
	}

	want := []string{"file1.js", "file2.js", "file3.js"}
	if len(results) != len(want) {
		t.Fatalf("Expected %d results, got %d", len(want), len(results))
	}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("results[%d] = %q, want %q (input order)", i, results[i], want[i])
		}
	}
}

func TestMapFiles_EmptyFileList(t *testing.T) {
	results, errs := MapFiles(context.Background(), []string{}, 0, func(ctx context.Context, path string) (string, error) {
		return path, nil
	}, nil)

	if results != nil {
		t.Errorf("Expected nil for empty file list, got %v", results)
	}
	if errs != nil {
		t.Errorf("Expected nil errors for empty file list, got %v", errs)
	}
}

func TestMapFiles_WithErrors(t *testing.T) {
	files := []string{"a.js", "bad.js", "c.js"}
	var progress atomic.Int32

	results, errs := MapFiles(context.Background(), files, 0, func(ctx context.Context, path string) (string, error) {
		if path == "bad.js" {
			return "", errors.New("parse failed")
		}
		return path, nil
	}, func() { progress.Add(1) })

	if len(results) != 2 || results[0] != "a.js" || results[1] != "c.js" {
		t.Errorf("results = %v, want [a.js c.js]", results)
	}
	if !errs.HasErrors() || len(errs.Errors) != 1 {
		t.Fatalf("errs = %v, want one error", errs)
	}
	if errs.Errors[0].Path != "bad.js" {
		t.Errorf("error path = %q, want bad.js", errs.Errors[0].Path)
	}
	if progress.Load() != 3 {
		t.Errorf("progress called %d times, want 3 (failures count too)", progress.Load())
	}
}

func TestMapFiles_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var called atomic.Int32
	results, errs := MapFiles(ctx, []string{"a.js", "b.js"}, 1, func(ctx context.Context, path string) (string, error) {
		called.Add(1)
		return path, nil
	}, nil)

	if called.Load() != 0 {
		t.Errorf("fn called %d times after cancellation", called.Load())
	}
	if len(results) != 0 {
		t.Errorf("results = %v, want none", results)
	}
	if errs == nil || len(errs.Errors) != 2 {
		t.Fatalf("errs = %v, want two cancellation errors", errs)
	}
	for _, e := range errs.Errors {
		if !errors.Is(e, context.Canceled) {
			t.Errorf("error %v should wrap context.Canceled", e)
		}
	}
}

func TestMapFiles_CancelMidway(t *testing.T) {
	fileCount := 100
	files := make([]string, fileCount)
	for i := range files {
		files[i] = fmt.Sprintf("file%d.js", i)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var processed atomic.Int32
	results, errs := MapFiles(ctx, files, 2, func(ctx context.Context, path string) (string, error) {
		if processed.Add(1) == 10 {
			cancel()
		}
		runtime.Gosched()
		return path, nil
	}, nil)

	errorCount := 0
	if errs != nil {
		errorCount = len(errs.Errors)
	}
	if len(results)+errorCount != fileCount {
		t.Errorf("results (%d) + errors (%d) should equal file count (%d)", len(results), errorCount, fileCount)
	}
	if len(results) >= fileCount {
		t.Error("cancellation should stop files that had not started")
	}
}

func TestWorkers(t *testing.T) {
	if got := Workers(3); got != 3 {
		t.Errorf("Workers(3) = %d", got)
	}
	if got := Workers(0); got != runtime.NumCPU()*DefaultWorkerMultiplier {
		t.Errorf("Workers(0) = %d, want 2x NumCPU", got)
	}
}

func TestProcessingError(t *testing.T) {
	inner := fmt.Errorf("parse failed")
	err := ProcessingError{Path: "/path/to/file.js", Err: inner}
	expected := "/path/to/file.js: parse failed"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, inner) {
		t.Error("ProcessingError should unwrap to its cause")
	}
}

func TestProcessingErrors(t *testing.T) {
	errs := &ProcessingErrors{}

	// Empty errors
	if errs.HasErrors() {
		t.Error("Empty ProcessingErrors should not have errors")
	}
	if errs.Error() != "no errors" {
		t.Errorf("Empty error message = %q, want 'no errors'", errs.Error())
	}

	// Single error
	errs.Add("/file1.js", fmt.Errorf("error1"))
	if !errs.HasErrors() {
		t.Error("ProcessingErrors with one error should have errors")
	}
	if errs.Error() != "/file1.js: error1" {
		t.Errorf("Single error message = %q", errs.Error())
	}

	// Multiple errors
	errs.Add("/file0.js", fmt.Errorf("error2"))
	if errs.Error() != "2 files failed to process (first: /file1.js: error1)" {
		t.Errorf("Multiple error message = %q", errs.Error())
	}

	sorted := errs.Sorted()
	if sorted[0].Path != "/file0.js" || sorted[1].Path != "/file1.js" {
		t.Errorf("Sorted() = %v, want ordered by path", sorted)
	}

	var nilErrs *ProcessingErrors
	if nilErrs.HasErrors() || nilErrs.Sorted() != nil {
		t.Error("nil ProcessingErrors should be empty")
	}
}

func TestProcessingErrors_ThreadSafe(t *testing.T) {
	errs := &ProcessingErrors{}
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			errs.Add(fmt.Sprintf("/file%d.js", n), fmt.Errorf("error %d", n))
		}(i)
	}
	wg.Wait()

	if len(errs.Errors) != 100 {
		t.Errorf("Expected 100 errors, got %d", len(errs.Errors))
	}
}

func createTestFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file %s: %v", name, err)
	}
	return path
}
