package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/activity"
	catalogsvc "github.com/Dykstra-Hamel/DH-portal-sub004/internal/catalog/service"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/pricing"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/quotes/repository"
	"github.com/Dykstra-Hamel/DH-portal-sub004/internal/quotes/service"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/apperr"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/httpkit"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/logger"
	"github.com/Dykstra-Hamel/DH-portal-sub004/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type fakeStore struct {
	quote repository.Quote
}

func (f *fakeStore) GetByID(_ context.Context, companyID, quoteID uuid.UUID) (repository.Quote, error) {
	if companyID != f.quote.CompanyID || quoteID != f.quote.ID {
		return repository.Quote{}, apperr.NotFound("quote not found")
	}
	return f.quote, nil
}

func (f *fakeStore) GetByPublicToken(context.Context, string) (repository.Quote, error) {
	return f.quote, nil
}

func (f *fakeStore) ListLineItems(context.Context, uuid.UUID, uuid.UUID) ([]repository.LineItem, error) {
	return nil, nil
}

func (f *fakeStore) List(context.Context, repository.ListParams) (repository.ListResult, error) {
	return repository.ListResult{}, nil
}

func (f *fakeStore) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (f *fakeStore) SaveQuoteUpdate(context.Context, uuid.UUID, uuid.UUID, repository.FieldPatch, []repository.LineItemWrite) error {
	return nil
}

func (f *fakeStore) SyncServiceAddress(context.Context, uuid.UUID, uuid.UUID, *string, *string, *string) error {
	return nil
}

func (f *fakeStore) MarkAccepted(_ context.Context, _ uuid.UUID, signatureData string, _ map[string]any) (repository.Quote, error) {
	accepted := f.quote
	accepted.QuoteStatus = "accepted"
	accepted.SignatureData = &signatureData
	return accepted, nil
}

func (f *fakeStore) MarkSent(_ context.Context, _, _ uuid.UUID, token string) (repository.Quote, error) {
	sent := f.quote
	sent.QuoteStatus = "sent"
	if sent.PublicToken == nil {
		sent.PublicToken = &token
	}
	return sent, nil
}

type fakeCatalog struct{}

func (fakeCatalog) FetchReferences(context.Context, uuid.UUID, catalogsvc.ReferenceIDs) (catalogsvc.References, error) {
	return catalogsvc.References{}, nil
}

type fakeSettings struct{}

func (fakeSettings) GetPricingSettings(context.Context, uuid.UUID) (pricing.Settings, error) {
	return pricing.Settings{}, nil
}

type fakeActivity struct {
	entries []activity.CreateParams
}

func (f *fakeActivity) Log(_ context.Context, params activity.CreateParams) {
	f.entries = append(f.entries, params)
}

func newTestRouter(h *Handler, companyID, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(httpkit.ContextCompanyIDKey, companyID)
		c.Set(httpkit.ContextUserIDKey, userID)
	})
	quotes := r.Group("/quotes")
	h.RegisterRoutes(quotes)
	h.RegisterAttachmentRoutes(quotes)
	return r
}

func TestSendEndpointMarksQuoteSent(t *testing.T) {
	companyID, userID, quoteID := uuid.New(), uuid.New(), uuid.New()
	store := &fakeStore{quote: repository.Quote{ID: quoteID, CompanyID: companyID, QuoteStatus: "draft"}}
	act := &fakeActivity{}
	svc := service.New(store, fakeCatalog{}, fakeSettings{}, act, logger.New("development"))
	h := New(svc, nil, validator.New())
	r := newTestRouter(h, companyID, userID)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/quotes/"+quoteID.String()+"/send", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"quote_status":"sent"`) {
		t.Fatalf("expected sent status in response, got %s", w.Body.String())
	}
	if len(act.entries) != 1 {
		t.Fatalf("expected 1 activity entry, got %d", len(act.entries))
	}
	if act.entries[0].UserID == nil || *act.entries[0].UserID != userID {
		t.Fatalf("expected caller %s on the activity entry, got %v", userID, act.entries[0].UserID)
	}
}

func TestRequestAttachmentUploadRejectsMissingFileName(t *testing.T) {
	companyID, userID, quoteID := uuid.New(), uuid.New(), uuid.New()
	store := &fakeStore{quote: repository.Quote{ID: quoteID, CompanyID: companyID, QuoteStatus: "draft"}}
	svc := service.New(store, fakeCatalog{}, fakeSettings{}, &fakeActivity{}, logger.New("development"))
	h := New(svc, nil, validator.New())
	r := newTestRouter(h, companyID, userID)

	w := httptest.NewRecorder()
	body := []byte(`{"content_type":"application/pdf","size_bytes":1024}`)
	req, _ := http.NewRequest(http.MethodPost, "/quotes/"+quoteID.String()+"/attachments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing file_name, got %d: %s", w.Code, w.Body.String())
	}
}
