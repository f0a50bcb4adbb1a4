// Package hybrid implements the Hybrid Searcher: run three ranked
// searches concurrently, fuse them with Reciprocal Rank Fusion, dedupe by the
// (path, start, end) identity triple, and return the top max_results chunks.
//
// Each ranked list's contribution is accumulated per identity rather than
// resolved with first-writer-wins, so every list that surfaces a candidate
// counts toward its fused score.
package hybrid

import (
	"context"
	"sort"
	"sync"

	"github.com/hybridgrep/hybridgrep/internal/model"
)

// Candidate is one hit from a single ranked list, in rank order.
type Candidate struct {
	Identity    model.Identity
	Content     string
	Language    string
	SymbolNames []string
}

// Searcher produces a ranked list of candidates for a query. Any of the three
// searchers may return an empty list (e.g. a disabled semantic subsystem);
// RRF remains well-defined.
type Searcher func(ctx context.Context, query string, limit int) ([]Candidate, error)

// ListIndex identifies which of the three ranked lists a contribution came from.
type ListIndex int

const (
	ListTraditional ListIndex = iota
	ListFullText
	ListSemantic
	numLists
)

type accumulator struct {
	candidate Candidate
	score     float64
	hasScore  [numLists]bool
}

// Search runs the three searchers concurrently and fuses their outputs.
func Search(ctx context.Context, query string, cfg model.HybridConfig, traditional, fullText, semantic Searcher) ([]model.CodeChunk, error) {
	weights := [numLists]float64{cfg.TraditionalWeight, cfg.FullTextWeight, cfg.SemanticWeight}
	searchers := [numLists]Searcher{traditional, fullText, semantic}

	lists := make([][]Candidate, numLists)
	errs := make([]error, numLists)

	var wg sync.WaitGroup
	for i := 0; i < int(numLists); i++ {
		i := i
		if searchers[i] == nil {
			continue // disabled index contributes an empty list
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := searchers[i](ctx, query, cfg.MaxResults)
			if err != nil {
				errs[i] = err
				return
			}
			lists[i] = res
		}()
	}
	wg.Wait()

	// A missing or erroring single searcher degrades to the others silently —
	// a failing semantic subsystem still leaves traditional+FT fusion intact;
	// only report an error if every list failed.
	anyOK := false
	for i := range errs {
		if errs[i] == nil {
			anyOK = true
		}
	}
	if !anyOK {
		for _, e := range errs {
			if e != nil {
				return nil, e
			}
		}
	}

	return fuse(lists, weights, cfg.RRFConstant, cfg.MaxResults), nil
}

// fuse implements the RRF formula: score(c) = sum_i w_i / (k + r(i,c)).
func fuse(lists [][]Candidate, weights [numLists]float64, k float64, maxResults int) []model.CodeChunk {
	acc := make(map[model.Identity]*accumulator)
	var order []model.Identity // first-seen order, for deterministic iteration

	for listIdx, list := range lists {
		for rank, cand := range list {
			r := float64(rank + 1) // 1-based rank
			a, ok := acc[cand.Identity]
			if !ok {
				a = &accumulator{candidate: cand}
				acc[cand.Identity] = a
				order = append(order, cand.Identity)
			}
			if weights[listIdx] > 0 {
				a.score += weights[listIdx] / (k + r)
			}
			a.hasScore[listIdx] = true
			// Later lists fill in metadata the earlier lists didn't have
			// (e.g. traditional search may lack Content; FT/semantic may carry it).
			if a.candidate.Content == "" && cand.Content != "" {
				a.candidate.Content = cand.Content
			}
			if a.candidate.Language == "" && cand.Language != "" {
				a.candidate.Language = cand.Language
			}
			if len(a.candidate.SymbolNames) == 0 && len(cand.SymbolNames) > 0 {
				a.candidate.SymbolNames = cand.SymbolNames
			}
		}
	}

	chunks := make([]model.CodeChunk, 0, len(order))
	for _, id := range order {
		a := acc[id]
		chunks = append(chunks, model.CodeChunk{
			Path:        id.Path,
			StartLine:   id.Start,
			EndLine:     id.End,
			Content:     a.candidate.Content,
			Language:    a.candidate.Language,
			SymbolNames: a.candidate.SymbolNames,
			Score:       a.score,
		})
	}

	// Sort by accumulated score descending; ties broken by (lower start_line,
	// then path lexicographic).
	sort.SliceStable(chunks, func(i, j int) bool {
		if chunks[i].Score != chunks[j].Score {
			return chunks[i].Score > chunks[j].Score
		}
		if chunks[i].StartLine != chunks[j].StartLine {
			return chunks[i].StartLine < chunks[j].StartLine
		}
		return chunks[i].Path < chunks[j].Path
	})

	if maxResults > 0 && len(chunks) > maxResults {
		chunks = chunks[:maxResults]
	}
	return chunks
}
