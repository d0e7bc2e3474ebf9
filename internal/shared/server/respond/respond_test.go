package respond

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-matcher/internal/shared/telemetry"
)

func TestErrorEnvelopeAndLevel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	restore := telemetry.SetOutput(&buf)
	defer restore()

	r := gin.New()
	r.GET("/bad", func(c *gin.Context) {
		Error(c, http.StatusUnprocessableEntity, "validation", "Please provide both a resume and a job description.", gin.H{"loading": false})
	})
	r.GET("/down", func(c *gin.Context) {
		Error(c, http.StatusBadGateway, "transport", "Analysis failed. Please try again.", nil)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bad", nil))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "validation" || body.Error.Details == nil {
		t.Fatalf("unexpected body %+v", body)
	}
	if !strings.Contains(buf.String(), `"level":"warn"`) {
		t.Fatalf("expected warn log, got %s", buf.String())
	}

	buf.Reset()
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/down", nil))
	if strings.Contains(w.Body.String(), `"details"`) {
		t.Fatalf("nil details must be omitted: %s", w.Body.String())
	}
	if !strings.Contains(buf.String(), `"level":"error"`) {
		t.Fatalf("expected error log, got %s", buf.String())
	}
}
