package pipeline

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/lawgest/internal/index"
	"github.com/dgallion1/lawgest/internal/outline"
	"github.com/dgallion1/lawgest/internal/qa"
	"github.com/dgallion1/lawgest/internal/segment"
)

func noBackoff(int) time.Duration { return 0 }

func sampleTerms() []outline.Term {
	return []outline.Term{
		{Title: "Điều 1. Phạm vi", SubItems: []outline.SubItem{
			{Title: "1.1 Nội dung A", Details: []outline.Detail{}},
			{Title: "1.2 Nội dung B", Details: []outline.Detail{}},
		}},
		{Title: "Điều 2. Hiệu lực", SubItems: []outline.SubItem{}},
	}
}

func lawHits() []index.Hit {
	return []index.Hit{
		{Chunk: segment.Chunk{Program: "luat.pdf", Text: "Điều 5. Quy định"}},
		{Chunk: segment.Chunk{Program: "nd.docx", Text: "Điều 9. Khác"}},
		{Chunk: segment.Chunk{Program: "luat.pdf", Text: "Điều 6. Thêm"}},
	}
}

func TestReviewer_Run(t *testing.T) {
	ans := &fakeAnswerer{fn: func(_ int, prompt string) (string, error) {
		if strings.Contains(prompt, "1.2 Nội dung B") {
			return "Đánh giá: Không phù hợp\nGợi ý sửa đổi: ...", nil
		}
		return "Đánh giá: Phù hợp", nil
	}}
	rv := NewReviewer(&fakeRetriever{hits: lawHits()}, ans, 5, 2, testLogger())

	results, err := rv.Run(context.Background(), sampleTerms())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantQ := []string{
		"Điều 1. Phạm vi > 1.1 Nội dung A",
		"Điều 1. Phạm vi > 1.2 Nội dung B",
		"Điều 2. Hiệu lực",
	}
	if len(results) != len(wantQ) {
		t.Fatalf("expected %d results, got %d", len(wantQ), len(results))
	}
	for i, r := range results {
		if r.Question != wantQ[i] {
			t.Errorf("result %d: expected question %q, got %q", i, wantQ[i], r.Question)
		}
		if !reflect.DeepEqual(r.Documents, []string{"luat.pdf", "nd.docx"}) {
			t.Errorf("result %d: unexpected documents %v", i, r.Documents)
		}
	}
	if results[0].Verdict != qa.VerdictSuitable || results[1].Verdict != qa.VerdictUnsuitable {
		t.Errorf("unexpected verdicts %q, %q", results[0].Verdict, results[1].Verdict)
	}
	if !reflect.DeepEqual(results[1].Path, []string{"Điều 1. Phạm vi", "1.2 Nội dung B"}) {
		t.Errorf("unexpected path %v", results[1].Path)
	}
}

func TestReviewer_RetriesTransientErrors(t *testing.T) {
	ans := &fakeAnswerer{fn: func(call int, _ string) (string, error) {
		if call < 3 {
			return "", &qa.RetryableError{StatusCode: 529, Message: "overloaded"}
		}
		return "Cần xem xét thêm", nil
	}}
	rv := NewReviewer(&fakeRetriever{}, ans, 5, 1, testLogger())
	rv.backoff = noBackoff

	terms := []outline.Term{{Title: "Điều 1. A", SubItems: []outline.SubItem{}}}
	results, err := rv.Run(context.Background(), terms)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", ans.calls)
	}
	if results[0].Verdict != qa.VerdictNeedsReview {
		t.Errorf("expected needs-review verdict, got %q", results[0].Verdict)
	}
	if len(results[0].Documents) != 0 || results[0].Documents == nil {
		t.Errorf("expected empty documents, got %#v", results[0].Documents)
	}
}

func TestReviewer_PartialFailure(t *testing.T) {
	ans := &fakeAnswerer{fn: func(_ int, prompt string) (string, error) {
		if strings.Contains(prompt, "Điều 2") {
			return "", errBoom
		}
		return "Phù hợp", nil
	}}
	rv := NewReviewer(&fakeRetriever{}, ans, 5, 3, testLogger())
	rv.backoff = noBackoff

	results, err := rv.Run(context.Background(), sampleTerms())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := results[2]
	if last.Error == "" || last.Verdict != qa.VerdictUnknown || last.Answer != "" {
		t.Errorf("expected failed result kept in place, got %+v", last)
	}
	if ans.calls != 3 {
		t.Errorf("expected non-retryable error not retried (3 calls), got %d", ans.calls)
	}
}

func TestReviewer_AllFail(t *testing.T) {
	rv := NewReviewer(&fakeRetriever{err: errBoom}, &fakeAnswerer{}, 5, 2, testLogger())
	_, err := rv.Run(context.Background(), sampleTerms())
	if !errors.Is(err, errBoom) {
		t.Errorf("expected wrapped retrieval error, got %v", err)
	}
}

func TestReviewer_Empty(t *testing.T) {
	rv := NewReviewer(&fakeRetriever{}, &fakeAnswerer{}, 5, 2, testLogger())
	results, err := rv.Run(context.Background(), nil)
	if err != nil || len(results) != 0 {
		t.Errorf("expected no results and no error, got %v, %v", results, err)
	}
}

func TestReviewer_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ans := &fakeAnswerer{fn: func(int, string) (string, error) { return "Phù hợp", nil }}
	rv := NewReviewer(&fakeRetriever{}, ans, 5, 1, testLogger())
	if _, err := rv.Run(ctx, sampleTerms()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
