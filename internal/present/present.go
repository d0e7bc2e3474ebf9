// Package present maps workspace state to what the client renders.
package present

import "resume-matcher/internal/analysis"

type Status string

const (
	StatusEmpty   Status = "empty"
	StatusLoading Status = "loading"
	StatusError   Status = "error"
	StatusResult  Status = "result"
)

type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

const (
	highThreshold   = 75
	mediumThreshold = 50
)

// State is the input to Render.
type State struct {
	Loading  bool
	Result   *analysis.Result
	Error    string
	FileName string
}

// View is the display model.
type View struct {
	Status          Status   `json:"status"`
	Score           float64  `json:"score"`
	Band            Band     `json:"band,omitempty"`
	Summary         string   `json:"summary"`
	Strengths       []string `json:"strengths"`
	Improvements    []string `json:"improvements"`
	MissingKeywords []string `json:"missingKeywords"`
	Error           string   `json:"error,omitempty"`
	FileName        string   `json:"fileName,omitempty"`
}

// BandFor buckets a score.
func BandFor(score float64) Band {
	switch {
	case score >= highThreshold:
		return BandHigh
	case score >= mediumThreshold:
		return BandMedium
	default:
		return BandLow
	}
}

// Render is a pure function of state. Loading wins over an error, an error
// wins over a stale result.
func Render(s State) View {
	view := View{
		Strengths:       []string{},
		Improvements:    []string{},
		MissingKeywords: []string{},
		FileName:        s.FileName,
	}
	switch {
	case s.Loading:
		view.Status = StatusLoading
	case s.Error != "":
		view.Status = StatusError
		view.Error = s.Error
	case s.Result != nil:
		view.Status = StatusResult
		view.Score = s.Result.MatchScore
		view.Band = BandFor(s.Result.MatchScore)
		view.Summary = s.Result.Summary
		view.Strengths = orEmpty(s.Result.Strengths)
		view.Improvements = orEmpty(s.Result.Improvements)
		view.MissingKeywords = orEmpty(s.Result.MissingKeywords)
	default:
		view.Status = StatusEmpty
	}
	return view
}

func orEmpty(items []string) []string {
	if items == nil {
		return []string{}
	}
	return append([]string(nil), items...)
}
