package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/lawgest/internal/index"
	"github.com/dgallion1/lawgest/internal/outline"
	"github.com/dgallion1/lawgest/internal/qa"
)

// Retriever finds law passages relevant to a question.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]index.Hit, error)
}

// Answerer asks the language model.
type Answerer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Reviewer answers every leaf question of an outline against the indexed
// law corpus.
type Reviewer struct {
	retriever     Retriever
	answerer      Answerer
	topK          int
	maxConcurrent int
	log           *slog.Logger

	backoff func(int) time.Duration
}

func NewReviewer(retriever Retriever, answerer Answerer, topK, maxConcurrent int, log *slog.Logger) *Reviewer {
	if topK <= 0 {
		topK = 5
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Reviewer{
		retriever:     retriever,
		answerer:      answerer,
		topK:          topK,
		maxConcurrent: maxConcurrent,
		log:           log.With("component", "reviewer"),
		backoff:       Backoff,
	}
}

// Run returns one result per question of terms, in question order. A
// question that fails keeps its slot with Error set and an unknown
// verdict; Run itself fails only when the context ends or every question
// failed.
func (rv *Reviewer) Run(ctx context.Context, terms []outline.Term) ([]qa.Result, error) {
	questions := outline.Questions(terms)
	results := make([]qa.Result, len(questions))
	if len(questions) == 0 {
		return results, nil
	}

	type answered struct {
		idx int
		res qa.Result
		err error
	}
	done := make(chan answered, len(questions))
	sem := make(chan struct{}, rv.maxConcurrent)

	for i, q := range questions {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		go func(i int, q outline.Question) {
			defer func() { <-sem }()
			res, err := rv.answer(ctx, i, q)
			done <- answered{idx: i, res: res, err: err}
		}(i, q)
	}

	failed := 0
	var firstErr error
	for range questions {
		a := <-done
		results[a.idx] = a.res
		if a.err != nil {
			failed++
			if firstErr == nil {
				firstErr = a.err
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if failed == len(questions) {
		return nil, fmt.Errorf("all %d questions failed: %w", failed, firstErr)
	}
	rv.log.Info("review complete", "questions", len(questions), "failed", failed)
	return results, nil
}

func (rv *Reviewer) answer(ctx context.Context, i int, q outline.Question) (qa.Result, error) {
	log := rv.log.With("question", i)
	res := qa.Result{
		Question:  q.Text,
		Path:      q.Path,
		Verdict:   qa.VerdictUnknown,
		Documents: []string{},
	}

	hits, err := rv.retriever.Search(ctx, q.Text, rv.topK)
	if err != nil {
		log.Error("retrieval failed", "error", err)
		res.Error = fmt.Sprintf("retrieve: %s", err)
		return res, err
	}
	res.Documents = qa.Documents(hits)

	prompt := qa.BuildPrompt(q.Text, hits)
	answer, err := retry(ctx, log, rv.backoff, func() (string, error) {
		return rv.answerer.Complete(ctx, qa.SystemPrompt, prompt)
	})
	if err != nil {
		log.Error("answer failed", "error", err)
		res.Error = fmt.Sprintf("answer: %s", err)
		return res, err
	}

	res.Answer = answer
	res.Verdict = qa.ParseVerdict(answer)
	return res, nil
}
