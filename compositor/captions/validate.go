package captions

import "fmt"

// Issue is one finding in a validation report, pointing at the 1-based
// position of the offending entry.
type Issue struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// Stats summarizes a validated track.
type Stats struct {
	Count         int     `json:"count"`
	TotalDuration float64 `json:"total_duration"`
	OverlapCount  int     `json:"overlap_count"`
	GapCount      int     `json:"gap_count"`
}

// Report is the outcome of Validate. Warnings never make a track invalid;
// only errors do.
type Report struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors,omitempty"`
	Warnings []Issue `json:"warnings,omitempty"`
	Stats    Stats   `json:"stats"`
}

// ValidateOptions tunes warning thresholds.
type ValidateOptions struct {
	GapThreshold float64 // seconds, default 5
}

// Hard limits beyond which a cue draws a duration warning.
const (
	minCueDuration = 0.1
	maxCueDuration = 10.0
	maxCueLength   = 200
)

// Validate checks a track and returns a report. Errors: negative start, end
// not after start. Warnings: overlap with the immediately preceding cue in
// start order (adjacent pairs only, transitive overlaps are not reported),
// gap above threshold, duration outside [100ms, 10s], empty or over-long
// text. Nothing is thrown; quality problems are reported, not enforced.
func Validate(entries []Entry, opts ValidateOptions) Report {
	gapThreshold := opts.GapThreshold
	if gapThreshold <= 0 {
		gapThreshold = 5
	}

	report := Report{Valid: true}
	report.Stats.Count = len(entries)

	for i, e := range entries {
		pos := i + 1

		if e.Start < 0 {
			report.Errors = append(report.Errors, Issue{pos, fmt.Sprintf("negative start time %.3f", e.Start)})
		}
		if e.End <= e.Start {
			report.Errors = append(report.Errors, Issue{pos, fmt.Sprintf("end %.3f not after start %.3f", e.End, e.Start)})
		}

		dur := e.End - e.Start
		if dur > 0 {
			report.Stats.TotalDuration += dur
			if dur < minCueDuration {
				report.Warnings = append(report.Warnings, Issue{pos, fmt.Sprintf("duration %.0fms is under 100ms", dur*1000)})
			}
			if dur > maxCueDuration {
				report.Warnings = append(report.Warnings, Issue{pos, fmt.Sprintf("duration %.1fs is over 10s", dur)})
			}
		}

		if e.Text == "" {
			report.Warnings = append(report.Warnings, Issue{pos, "empty text"})
		} else if len([]rune(e.Text)) > maxCueLength {
			report.Warnings = append(report.Warnings, Issue{pos, fmt.Sprintf("text is %d characters, over %d", len([]rune(e.Text)), maxCueLength)})
		}
	}

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sortByStart(sorted)

	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]

		if cur.Start < prev.End {
			report.Stats.OverlapCount++
			report.Warnings = append(report.Warnings,
				Issue{i + 1, fmt.Sprintf("overlaps previous cue by %.3fs", prev.End-cur.Start)})
			continue
		}

		if gap := cur.Start - prev.End; gap > gapThreshold {
			report.Stats.GapCount++
			report.Warnings = append(report.Warnings,
				Issue{i + 1, fmt.Sprintf("gap of %.1fs after previous cue", gap)})
		}
	}

	report.Valid = len(report.Errors) == 0
	return report
}
