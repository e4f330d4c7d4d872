package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/cadences/service"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/httpkit"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/logger"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(httpkit.ContextCompanyIDKey, uuid.New())
		c.Set(httpkit.ContextUserIDKey, uuid.New())
	})
	h.RegisterRoutes(r.Group("/cadences"))
	return r
}

// The service is never reached by these requests; nil ports are fine.
func newTestHandler() *Handler {
	svc := service.New(nil, nil, nil, nil, nil, nil, logger.New("development"))
	return New(svc, validator.New())
}

func postJSON(r *gin.Engine, path string, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCreateRejectsEmptySteps(t *testing.T) {
	r := newTestRouter(newTestHandler())

	w := postJSON(r, "/cadences", `{"name":"Follow Up","steps":[]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty steps, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateRejectsBadStepType(t *testing.T) {
	r := newTestRouter(newTestHandler())

	w := postJSON(r, "/cadences", `{"name":"Follow Up","steps":[{"step_order":1,"step_type":"fax","delay_hours":0}]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown step type, got %d: %s", w.Code, w.Body.String())
	}
}

func TestEnrollRejectsMissingLead(t *testing.T) {
	r := newTestRouter(newTestHandler())

	w := postJSON(r, "/cadences/"+uuid.NewString()+"/enrollments", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing lead_id, got %d: %s", w.Code, w.Body.String())
	}
}
