package workspace

import (
	"context"
	"fmt"

	"resume-matcher/internal/analysis"
	"resume-matcher/internal/ingest"
	"resume-matcher/internal/shared/telemetry"
)

// FileIngester turns an uploaded file into resume text.
type FileIngester interface {
	FromFile(ctx context.Context, name, declaredType string, data []byte) (ingest.Document, error)
}

// Service owns the setters for every user's workspace.
type Service struct {
	Store    *Store
	Ingester FileIngester
	Analyzer analysis.Analyzer
}

func NewService(store *Store, ingester FileIngester, analyzer analysis.Analyzer) *Service {
	if store == nil {
		store = NewStore()
	}
	return &Service{Store: store, Ingester: ingester, Analyzer: analyzer}
}

func (s *Service) Get(userID string) State {
	return s.Store.Get(userID)
}

// SetResumeText replaces the resume verbatim and clears the file name.
func (s *Service) SetResumeText(userID, text string) State {
	var out State
	s.Store.with(userID, func(e *entry) {
		e.resumeGen++
		doc := ingest.FromText(text)
		e.state.Resume = Resume{Text: doc.Text, FileName: doc.FileName}
		out = e.state.clone()
	})
	return out
}

func (s *Service) SetJobDescription(userID, text string) State {
	var out State
	s.Store.with(userID, func(e *entry) {
		e.state.JobDescription = text
		out = e.state.clone()
	})
	return out
}

// IngestFile loads a file into the resume. The file name is recorded either
// way; on failure the text is left as it was. A result that lands after a
// newer resume write is dropped.
func (s *Service) IngestFile(ctx context.Context, userID, name, declaredType string, data []byte) (State, error) {
	var (
		live *entry
		gen  uint64
	)
	s.Store.with(userID, func(e *entry) {
		e.resumeGen++
		live, gen = e, e.resumeGen
	})

	doc, err := s.Ingester.FromFile(ctx, name, declaredType, data)
	var ingestErr error
	if err != nil {
		ingestErr = &analysis.Error{Kind: analysis.KindIngestion, Message: ingest.Message(err), Err: err}
	}

	var (
		out   State
		stale = true
	)
	s.Store.current(userID, live, func() {
		if live.resumeGen != gen {
			return
		}
		stale = false
		live.state.Resume.FileName = doc.FileName
		if ingestErr != nil {
			live.state.Error = operationError(ingestErr)
		} else {
			live.state.Resume.Text = doc.Text
			if live.state.Error != nil && live.state.Error.Kind == analysis.KindIngestion {
				live.state.Error = nil
			}
		}
		out = live.state.clone()
	})
	if stale {
		telemetry.Info("ingest.superseded", map[string]any{"user_id": userID, "file_name": doc.FileName})
		return s.Store.Get(userID), nil
	}
	return out, ingestErr
}

// Analyze runs one analysis for the user's current inputs. A second call while
// one is in flight gets ErrAnalysisInProgress and does not touch state.
func (s *Service) Analyze(ctx context.Context, userID string) (state State, err error) {
	var (
		live        *entry
		gen         uint64
		resume, job string
		busy        bool
	)
	s.Store.with(userID, func(e *entry) {
		if e.state.Loading {
			busy = true
			state = e.state.clone()
			return
		}
		e.analysisGen++
		live, gen = e, e.analysisGen
		e.state.Loading = true
		e.state.Error = nil
		resume, job = e.state.Resume.Text, e.state.JobDescription
	})
	if busy {
		return state, ErrAnalysisInProgress
	}

	var result analysis.Result
	defer func() {
		if r := recover(); r != nil {
			telemetry.Error("analysis.panic", map[string]any{"user_id": userID, "panic": fmt.Sprint(r)})
			err = &analysis.Error{Kind: analysis.KindParse, Message: analysis.FailedMessage, Err: fmt.Errorf("panic: %v", r)}
		}
		applied := s.Store.current(userID, live, func() {
			if live.analysisGen != gen {
				return
			}
			live.state.Loading = false
			if err != nil {
				live.state.Result = nil
				live.state.Error = operationError(err)
			} else {
				r := result
				live.state.Result = &r
				live.state.Error = nil
			}
			state = live.state.clone()
		})
		if !applied {
			telemetry.Info("analysis.discarded", map[string]any{"user_id": userID})
			state = s.Store.Get(userID)
		}
	}()

	result, err = s.Analyzer.Analyze(ctx, resume, job)
	return state, err
}

// DismissError clears the current error.
func (s *Service) DismissError(userID string) State {
	var out State
	s.Store.with(userID, func(e *entry) {
		e.state.Error = nil
		out = e.state.clone()
	})
	return out
}

// Reset discards the user's workspace, including any in-flight results.
func (s *Service) Reset(_ context.Context, userID string) {
	s.Store.Delete(userID)
}
