package recommend

// Filter is a single hard-exclusion step. Filters drop candidates that
// must never appear in the output, whatever their score; ordering is
// preserved.
type Filter interface {
	Name() string
	Apply(candidates []*Candidate) ([]*Candidate, Step)
}

// Step describes the result of one filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

type bundleFilter struct{}

// NewBundleFilter drops pre-packaged multi-assessment job solutions.
// Bundles are never individually recommended.
func NewBundleFilter() Filter {
	return &bundleFilter{}
}

func (f *bundleFilter) Name() string { return "bundle" }

func (f *bundleFilter) Apply(candidates []*Candidate) ([]*Candidate, Step) {
	kept := candidates[:0:0]
	for _, cand := range candidates {
		if cand.Item.IsBundle {
			continue
		}
		kept = append(kept, cand)
	}

	return kept, Step{
		Initial: len(candidates),
		Dropped: len(candidates) - len(kept),
		Left:    len(kept),
	}
}

type durationFilter struct {
	max    *int
	strict bool
}

// NewDurationFilter drops candidates that take longer than max minutes.
// Items with unknown duration pass: absence of information is not a
// violation. Strict mode drops them too.
func NewDurationFilter(max *int, strict bool) Filter {
	return &durationFilter{max: max, strict: strict}
}

func (f *durationFilter) Name() string { return "duration" }

func (f *durationFilter) Apply(candidates []*Candidate) ([]*Candidate, Step) {
	if f.max == nil {
		return candidates, Step{Initial: len(candidates), Left: len(candidates)}
	}

	kept := candidates[:0:0]
	for _, cand := range candidates {
		if !cand.Item.HasKnownDuration() {
			if f.strict {
				continue
			}
			kept = append(kept, cand)
			continue
		}
		if cand.Item.DurationMinutes > *f.max {
			continue
		}
		kept = append(kept, cand)
	}

	return kept, Step{
		Initial: len(candidates),
		Dropped: len(candidates) - len(kept),
		Left:    len(kept),
	}
}
