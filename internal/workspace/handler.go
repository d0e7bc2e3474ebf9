package workspace

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-matcher/internal/analysis"
	"resume-matcher/internal/ingest"
	"resume-matcher/internal/present"
	"resume-matcher/internal/shared/server/middleware"
	"resume-matcher/internal/shared/server/respond"
)

const defaultMaxUploadSize = 10 << 20 // 10MB

// Handler wires workspace routes to the service.
type Handler struct {
	Svc           *Service
	MaxUploadSize int64
}

func NewHandler(svc *Service, maxUploadSize int64) *Handler {
	if maxUploadSize <= 0 {
		maxUploadSize = defaultMaxUploadSize
	}
	return &Handler{Svc: svc, MaxUploadSize: maxUploadSize}
}

// Response is the payload of every workspace route.
type Response struct {
	State State        `json:"state"`
	View  present.View `json:"view"`
}

type textRequest struct {
	Text *string `json:"text"`
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/workspace", h.get)
	rg.PUT("/workspace/resume", h.setResume)
	rg.POST("/workspace/resume/file", h.uploadResume)
	rg.PUT("/workspace/job-description", h.setJobDescription)
	rg.POST("/workspace/analyze", h.analyze)
	rg.DELETE("/workspace/error", h.dismissError)
}

func toResponse(s State) Response {
	return Response{State: s, View: s.View()}
}

func (h *Handler) get(c *gin.Context) {
	respond.OK(c, toResponse(h.Svc.Get(middleware.UserIDFromContext(c))))
}

func (h *Handler) setResume(c *gin.Context) {
	text, ok := bindText(c)
	if !ok {
		return
	}
	respond.OK(c, toResponse(h.Svc.SetResumeText(middleware.UserIDFromContext(c), text)))
}

func (h *Handler) setJobDescription(c *gin.Context) {
	text, ok := bindText(c)
	if !ok {
		return
	}
	respond.OK(c, toResponse(h.Svc.SetJobDescription(middleware.UserIDFromContext(c), text)))
}

func bindText(c *gin.Context) (string, bool) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "text is required", nil)
		return "", false
	}
	return *req.Text, true
}

// uploadResume accepts multipart field "file", or "files" for dropped
// selections. Only the first file is used.
func (h *Handler) uploadResume(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadSize)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds upload limit", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	files := form.File["file"]
	if len(files) == 0 {
		files = form.File["files"]
	}
	if len(files) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	header := files[0]

	file, err := header.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	declared := header.Header.Get("Content-Type")
	c.Set(middleware.IngestKindKey, string(ingest.ResolveKind(declared, data)))

	state, err := h.Svc.IngestFile(c.Request.Context(), userID, header.Filename, declared, data)
	if err != nil {
		h.operationFailed(c, state, err)
		return
	}
	respond.OK(c, toResponse(state))
}

func (h *Handler) analyze(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	ctx := analysis.WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))

	state, err := h.Svc.Analyze(ctx, userID)
	if errors.Is(err, ErrAnalysisInProgress) {
		c.Set(middleware.AnalysisStatusKey, "in_progress")
		respond.Error(c, http.StatusConflict, "analysis_in_progress", "An analysis is already running.", toResponse(state))
		return
	}
	if err != nil {
		c.Set(middleware.AnalysisStatusKey, "failed")
		h.operationFailed(c, state, err)
		return
	}
	c.Set(middleware.AnalysisStatusKey, "completed")
	respond.OK(c, toResponse(state))
}

func (h *Handler) dismissError(c *gin.Context) {
	respond.OK(c, toResponse(h.Svc.DismissError(middleware.UserIDFromContext(c))))
}

// operationFailed reports a classified failure with the resulting state attached.
func (h *Handler) operationFailed(c *gin.Context, state State, err error) {
	aerr := analysis.AsError(err)
	respond.Error(c, statusFor(aerr.Kind), string(aerr.Kind), aerr.Message, toResponse(state))
}

func statusFor(kind analysis.Kind) int {
	switch kind {
	case analysis.KindValidation, analysis.KindIngestion:
		return http.StatusUnprocessableEntity
	case analysis.KindConfiguration:
		return http.StatusServiceUnavailable
	case analysis.KindTransport, analysis.KindParse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
