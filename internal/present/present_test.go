package present

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-matcher/internal/analysis"
)

func TestBandFor(t *testing.T) {
	cases := map[float64]Band{
		100: BandHigh, 75: BandHigh, 74.9: BandMedium, 50: BandMedium, 49.99: BandLow, 0: BandLow,
	}
	for score, want := range cases {
		assert.Equal(t, want, BandFor(score), "score %v", score)
	}
}

func TestRenderStates(t *testing.T) {
	result := &analysis.Result{MatchScore: 82, Summary: "Strong match", Strengths: []string{"Go"}}

	assert.Equal(t, StatusEmpty, Render(State{}).Status)
	assert.Equal(t, StatusLoading, Render(State{Loading: true, Error: "x", Result: result}).Status)

	errView := Render(State{Error: "Analysis failed. Please try again.", Result: result})
	assert.Equal(t, StatusError, errView.Status)
	assert.Equal(t, "Analysis failed. Please try again.", errView.Error)

	view := Render(State{Result: result, FileName: "cv.pdf"})
	assert.Equal(t, StatusResult, view.Status)
	assert.Equal(t, 82.0, view.Score)
	assert.Equal(t, BandHigh, view.Band)
	assert.Equal(t, []string{"Go"}, view.Strengths)
	assert.Equal(t, "cv.pdf", view.FileName)
}

func TestRenderNilListsBecomeEmpty(t *testing.T) {
	view := Render(State{Result: &analysis.Result{MatchScore: 10}})
	raw, err := json.Marshal(view)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"strengths":[]`)
	assert.Contains(t, string(raw), `"improvements":[]`)
	assert.Contains(t, string(raw), `"missingKeywords":[]`)
	assert.Equal(t, BandLow, view.Band)
}

func TestRenderIsDeterministic(t *testing.T) {
	s := State{Result: &analysis.Result{MatchScore: 60, MissingKeywords: []string{"k8s"}}}
	assert.Equal(t, Render(s), Render(s))
}
