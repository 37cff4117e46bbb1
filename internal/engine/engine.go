package engine

import (
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/sagehill-systems/repohealth/internal/rules"
	"github.com/sagehill-systems/repohealth/internal/snapshot"
)

// Option configures an evaluation.
type Option func(*options)

type options struct {
	workers int
}

// WithWorkers bounds the evaluation worker pool. Values below 1 select
// the default of 4. The final report is identical for any worker count;
// ordering comes from the deterministic sort, not submission order.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// Evaluate applies every rule to the snapshot and aggregates a Report.
// Rules whose applies_when predicate rejects the snapshot are excluded
// entirely: they emit no detection and do not count toward TotalPatterns.
func Evaluate(snap *snapshot.Snapshot, ruleList []rules.Rule, opts ...Option) *Report {
	o := options{workers: 4}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = 4
	}

	applicable := make([]rules.Rule, 0, len(ruleList))
	for _, r := range ruleList {
		if r.AppliesWhen.Matches(snap) {
			applicable = append(applicable, r)
		}
	}

	// Each rule reads only the immutable snapshot and writes only its own
	// slot, so the pool needs no locking.
	detections := make([]Detection, len(applicable))
	var g errgroup.Group
	g.SetLimit(o.workers)
	for i, r := range applicable {
		g.Go(func() error {
			detections[i] = evaluateRule(snap, r)
			return nil
		})
	}
	_ = g.Wait()

	rep := &Report{
		Project:       snap.Name,
		ProjectTypes:  snap.ProjectTypes,
		Frameworks:    snap.Frameworks,
		TotalPatterns: len(applicable),
	}

	for _, d := range detections {
		if !d.IssueFound {
			continue
		}
		rep.IssuesFound++
		switch d.Severity {
		case rules.High:
			rep.HighSeverity++
		case rules.Medium:
			rep.MediumSeverity++
		case rules.Low:
			rep.LowSeverity++
		}
		rep.Detections = append(rep.Detections, d)
	}

	sort.Slice(rep.Detections, func(i, j int) bool {
		a, b := rep.Detections[i], rep.Detections[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return a.RuleID < b.RuleID
	})

	rep.HealthScore = HealthScore(rep.TotalPatterns, rep.IssuesFound, rep.HighSeverity, rep.MediumSeverity)
	return rep
}
