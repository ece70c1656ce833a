// Copyright 2024 The OpenMagnetics Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package filter implements the scoring pipeline of spec.md §4.12: a
// deterministic, ordered list of named filters, each producing a raw
// score for a candidate design, optionally inverted, log-compressed,
// weighted, and/or marked strictly required so a failing candidate is
// dropped outright rather than merely penalized.
package filter

import (
	"math"
	"sort"

	"github.com/OpenMagnetics/mkf-sub006/merr"
)

// ScoreFunc computes a filter's raw score for one candidate. Higher is
// always better after the filter's own transforms (Invert, Log) are
// applied; the caller decides what "better" means for their domain.
type ScoreFunc func(candidate any) (float64, error)

// Filter is one named stage of the pipeline.
type Filter struct {
	Name              string
	Score             ScoreFunc
	Weight            float64
	Invert            bool // true: lower raw score is better, so 1/score is used
	Log               bool // true: log-compress the (possibly inverted) score before weighting
	StrictlyRequired  bool // true: a non-positive transformed score drops the candidate entirely
}

// Result is one candidate's outcome after running the full pipeline.
type Result struct {
	Candidate   any
	Scores      map[string]float64 // per-filter transformed score
	Aggregate   float64
	Disqualified bool
	DisqualifiedBy string
}

// transform applies invert/log to a raw score, per spec.md §4.12.
func (f Filter) transform(raw float64) (float64, error) {
	v := raw
	if f.Invert {
		if v == 0 {
			return 0, merr.New(merr.InvalidInput, "filter.transform", "filter %q: cannot invert a zero score", f.Name)
		}
		v = 1 / v
	}
	if f.Log {
		if v <= 0 {
			return 0, merr.New(merr.InvalidInput, "filter.transform", "filter %q: cannot log-compress a non-positive score %v", f.Name, v)
		}
		v = math.Log(v)
	}
	return v, nil
}

// Run evaluates every filter, in order, against every candidate, and
// returns each candidate's per-filter scores and weighted aggregate. A
// candidate that fails a strictly-required filter (transformed score <= 0)
// is marked Disqualified and its aggregate is left at 0. Strictly-required
// filters themselves never enter the aggregate (passing them is pass/fail,
// not a magnitude); surviving candidates' aggregate is the weighted
// *average* of every non-strict filter's transformed score,
// sum(weight_i*score_i)/sum(weight_i), per spec.md §4.12.
func Run(filters []Filter, candidates []any) ([]Result, error) {
	results := make([]Result, len(candidates))
	weightSum := make([]float64, len(candidates))
	for i, c := range candidates {
		results[i] = Result{Candidate: c, Scores: make(map[string]float64, len(filters))}
	}

	for _, f := range filters {
		if f.Score == nil {
			return nil, merr.New(merr.InvalidInput, "filter.Run", "filter %q has no score function", f.Name)
		}
		for i := range results {
			if results[i].Disqualified {
				continue
			}
			raw, err := f.Score(results[i].Candidate)
			if err != nil {
				return nil, merr.Wrap(merr.InvalidInput, "filter.Run", err, "filter %q", f.Name)
			}
			transformed, err := f.transform(raw)
			if err != nil {
				return nil, err
			}
			results[i].Scores[f.Name] = transformed
			if f.StrictlyRequired && transformed <= 0 {
				results[i].Disqualified = true
				results[i].DisqualifiedBy = f.Name
				continue
			}
			if f.StrictlyRequired {
				continue
			}
			weight := f.Weight
			if weight == 0 {
				weight = 1
			}
			results[i].Aggregate += weight * transformed
			weightSum[i] += weight
		}
	}
	for i := range results {
		if !results[i].Disqualified && weightSum[i] > 0 {
			results[i].Aggregate /= weightSum[i]
		}
	}
	return results, nil
}

// Rank sorts non-disqualified results by descending aggregate score,
// breaking ties by candidate order for determinism, and returns the top k
// (or every surviving candidate if k <= 0 or exceeds the surviving count).
func Rank(results []Result, k int) []Result {
	survivors := make([]Result, 0, len(results))
	for i := range results {
		if !results[i].Disqualified {
			survivors = append(survivors, results[i])
		}
	}
	sort.SliceStable(survivors, func(a, b int) bool {
		return survivors[a].Aggregate > survivors[b].Aggregate
	})
	if k <= 0 || k > len(survivors) {
		k = len(survivors)
	}
	return survivors[:k]
}
