package types

import "time"

// Verdict is the three-valued outcome of checking one program against the
// step-bound policy.
type Verdict int

const (
	// VerdictUnknown means the check was indeterminate: the solver timed
	// out, answered unknown, or a satisfying state could not be confirmed.
	VerdictUnknown Verdict = iota
	// VerdictSatisfies means no execution, within the modeled unrolling
	// depth, exceeds the step bound.
	VerdictSatisfies
	// VerdictViolates means some initial state drives execution over the
	// step bound (or into the depth-exceeded branch of the analysis).
	VerdictViolates
)

func (v Verdict) String() string {
	switch v {
	case VerdictSatisfies:
		return "Satisfies"
	case VerdictViolates:
		return "Violates"
	case VerdictUnknown:
		return "Unknown"
	default:
		return "?"
	}
}

// Report is the result of checking a single file.
type Report struct {
	Filename string           `json:"filename"`
	Verdict  Verdict          `json:"verdict"`
	Err      string           `json:"error,omitempty"`
	Witness  map[string]int64 `json:"witness,omitempty"`
	Elapsed  time.Duration    `json:"elapsed"`
}

// MarshalText makes Verdict render as its name in JSON output.
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Summary aggregates verdict counts over a set of reports.
type Summary struct {
	Satisfies int `json:"satisfies"`
	Violates  int `json:"violates"`
	Unknown   int `json:"unknown"`
	Errors    int `json:"errors"`
}

// Summarize tallies reports into a Summary.
func Summarize(reports []Report) Summary {
	var s Summary
	for _, r := range reports {
		if r.Err != "" {
			s.Errors++
			continue
		}
		switch r.Verdict {
		case VerdictSatisfies:
			s.Satisfies++
		case VerdictViolates:
			s.Violates++
		case VerdictUnknown:
			s.Unknown++
		}
	}
	return s
}
