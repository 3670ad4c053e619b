package domain

// MinDeltaLines is the smallest delta worth publishing. A run whose delta
// holds fewer lines publishes nothing, which also drops legitimate single
// observation updates. Kept at 2 until someone confirms whether the
// threshold was meant as noise suppression.
const MinDeltaLines = 2

// DiffState is the state of the snapshot differ.
type DiffState int

const (
	NoBaseline DiffState = iota
	BaselinePresent
	Done
)

func (s DiffState) String() string {
	switch s {
	case NoBaseline:
		return "no_baseline"
	case BaselinePresent:
		return "baseline_present"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Delta is the outcome of comparing a run's snapshot with the previous one.
type Delta struct {
	// From is the state the differ started in.
	From DiffState
	// State is always Done once ComputeDelta returns.
	State   DiffState
	Lines   []string
	Publish bool
}

// ComputeDelta compares the current snapshot body with the baseline body.
// Without a baseline the whole current body is the delta. With one, only
// lines absent from the baseline are kept and the delta is published when at
// least MinDeltaLines remain. Both bodies exclude header lines.
func ComputeDelta(baseline []string, hasBaseline bool, current []string) Delta {
	if !hasBaseline {
		lines := make([]string, len(current))
		copy(lines, current)
		return Delta{From: NoBaseline, State: Done, Lines: lines, Publish: true}
	}

	kept := Diff(baseline, current)
	return Delta{
		From:    BaselinePresent,
		State:   Done,
		Lines:   kept,
		Publish: len(kept) >= MinDeltaLines,
	}
}

// Diff returns the lines of current that do not occur in baseline, in
// current's order. Comparison is exact text; "1.0" and "1.00" differ.
func Diff(baseline, current []string) []string {
	seen := make(map[string]struct{}, len(baseline))
	for _, l := range baseline {
		seen[l] = struct{}{}
	}

	kept := make([]string, 0, len(current))
	for _, l := range current {
		if _, ok := seen[l]; !ok {
			kept = append(kept, l)
		}
	}
	return kept
}

// Dedupe removes repeated lines, keeping the first occurrence of each.
func Dedupe(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
