// Package analysistest provides a scriptable stand-in for the analysis client.
package analysistest

import (
	"context"
	"sync"

	"github.com/sokinpui/docpanel/internal/analysis"
)

// Fake records every request and answers through the Func fields. Unset
// funcs return canned responses.
type Fake struct {
	SummarizeFunc func(ctx context.Context, req analysis.SummarizeRequest) (*analysis.SummarizeResponse, error)
	CompareFunc   func(ctx context.Context, req analysis.CompareRequest) (*analysis.CompareResponse, error)
	RedraftFunc   func(ctx context.Context, req analysis.RedraftRequest) (*analysis.RedraftResponse, error)
	AnalyzeFunc   func(ctx context.Context, req analysis.AnalyzeRequest) (*analysis.AnalyzeResponse, error)

	mu        sync.Mutex
	Summaries []analysis.SummarizeRequest
	Compares  []analysis.CompareRequest
	Redrafts  []analysis.RedraftRequest
	Analyses  []analysis.AnalyzeRequest
}

// Calls returns the total number of requests received.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Summaries) + len(f.Compares) + len(f.Redrafts) + len(f.Analyses)
}

func (f *Fake) Summarize(ctx context.Context, req analysis.SummarizeRequest) (*analysis.SummarizeResponse, error) {
	f.mu.Lock()
	f.Summaries = append(f.Summaries, req)
	f.mu.Unlock()
	if f.SummarizeFunc != nil {
		return f.SummarizeFunc(ctx, req)
	}
	return &analysis.SummarizeResponse{Summary: "Mock summary"}, nil
}

func (f *Fake) Compare(ctx context.Context, req analysis.CompareRequest) (*analysis.CompareResponse, error) {
	f.mu.Lock()
	f.Compares = append(f.Compares, req)
	f.mu.Unlock()
	if f.CompareFunc != nil {
		return f.CompareFunc(ctx, req)
	}
	return &analysis.CompareResponse{Comparison: "Mock comparison"}, nil
}

func (f *Fake) Redraft(ctx context.Context, req analysis.RedraftRequest) (*analysis.RedraftResponse, error) {
	f.mu.Lock()
	f.Redrafts = append(f.Redrafts, req)
	f.mu.Unlock()
	if f.RedraftFunc != nil {
		return f.RedraftFunc(ctx, req)
	}
	return &analysis.RedraftResponse{RedraftedText: "Mock redraft"}, nil
}

func (f *Fake) Analyze(ctx context.Context, req analysis.AnalyzeRequest) (*analysis.AnalyzeResponse, error) {
	f.mu.Lock()
	f.Analyses = append(f.Analyses, req)
	f.mu.Unlock()
	if f.AnalyzeFunc != nil {
		return f.AnalyzeFunc(ctx, req)
	}
	return &analysis.AnalyzeResponse{Response: "Mock response"}, nil
}
