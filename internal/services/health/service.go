package health

// EngineState reports the PDF engine lifecycle.
type EngineState interface {
	StateName() string
}

// Status is the health payload.
type Status struct {
	OK                 bool   `json:"ok"`
	PDFEngine          string `json:"pdfEngine"`
	AnalysisConfigured bool   `json:"analysisConfigured"`
	IdentityConfigured bool   `json:"identityConfigured"`
}

// Service encapsulates health-related checks.
type Service struct {
	engine             EngineState
	analysisConfigured bool
	identityConfigured bool
}

// NewService constructs a new health service.
func NewService(engine EngineState, analysisConfigured, identityConfigured bool) *Service {
	return &Service{engine: engine, analysisConfigured: analysisConfigured, identityConfigured: identityConfigured}
}

// Status never fails: a missing key or an unloaded engine is reported, not fatal.
func (s *Service) Status() Status {
	st := Status{
		OK:                 true,
		PDFEngine:          "not_loaded",
		AnalysisConfigured: s.analysisConfigured,
		IdentityConfigured: s.identityConfigured,
	}
	if s.engine != nil {
		st.PDFEngine = s.engine.StateName()
	}
	return st
}
