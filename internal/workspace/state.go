// Package workspace holds each signed-in user's in-memory matching session.
package workspace

import (
	"errors"

	"resume-matcher/internal/analysis"
	"resume-matcher/internal/present"
)

var ErrAnalysisInProgress = errors.New("analysis already in progress")

// Resume is the working resume body and its origin file name, if uploaded.
type Resume struct {
	Text     string `json:"text"`
	FileName string `json:"fileName"`
}

// OperationError is the single current failure shown to the user.
type OperationError struct {
	Kind    analysis.Kind `json:"kind"`
	Message string        `json:"message"`
}

// State is one user's workspace. Nothing here is persisted.
type State struct {
	Resume         Resume           `json:"resume"`
	JobDescription string           `json:"jobDescription"`
	Result         *analysis.Result `json:"result"`
	Error          *OperationError  `json:"error"`
	Loading        bool             `json:"loading"`
}

// View renders the state for display.
func (s State) View() present.View {
	ps := present.State{Loading: s.Loading, Result: s.Result, FileName: s.Resume.FileName}
	if s.Error != nil {
		ps.Error = s.Error.Message
	}
	return present.Render(ps)
}

func (s State) clone() State {
	out := s
	if s.Result != nil {
		r := *s.Result
		r.MissingKeywords = append([]string(nil), s.Result.MissingKeywords...)
		r.Strengths = append([]string(nil), s.Result.Strengths...)
		r.Improvements = append([]string(nil), s.Result.Improvements...)
		out.Result = &r
	}
	if s.Error != nil {
		e := *s.Error
		out.Error = &e
	}
	return out
}

func operationError(err error) *OperationError {
	aerr := analysis.AsError(err)
	return &OperationError{Kind: aerr.Kind, Message: aerr.Message}
}
