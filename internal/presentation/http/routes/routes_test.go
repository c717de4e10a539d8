package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/application/editor"
	"github.com/sangkips/invoicer-api/internal/application/service"
	"github.com/sangkips/invoicer-api/internal/config"
	"github.com/sangkips/invoicer-api/internal/domain/entity"
	"github.com/sangkips/invoicer-api/internal/presentation/http/handler"
	"github.com/sangkips/invoicer-api/pkg/apperror"
	"github.com/sangkips/invoicer-api/pkg/utils"
	"github.com/shopspring/decimal"
)

type fakeReferences struct {
	ref editor.ReferenceData
}

func (f *fakeReferences) Load(context.Context) (editor.ReferenceData, error) {
	return f.ref, nil
}

type fakeInvoices struct {
	mu      sync.Mutex
	created []editor.FormData
	updated []editor.FormData
}

func (f *fakeInvoices) GenerateInvoiceNumber(context.Context, uuid.UUID) (string, error) {
	return "INV-0001", nil
}

func (f *fakeInvoices) CreateInvoice(_ context.Context, form editor.FormData) (editor.SavedInvoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, form)
	return editor.SavedInvoice{ID: uuid.New(), InvoiceNumber: form.InvoiceNumber}, nil
}

func (f *fakeInvoices) UpdateInvoice(_ context.Context, id uuid.UUID, form editor.FormData) (editor.SavedInvoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, form)
	return editor.SavedInvoice{ID: id, InvoiceNumber: form.InvoiceNumber}, nil
}

func (f *fakeInvoices) GetInvoice(context.Context, uuid.UUID) (*entity.Invoice, error) {
	return nil, apperror.NewNotFoundError("Invoice")
}

func (f *fakeInvoices) createdCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

type fakeIdempotencyRepo struct {
	mu   sync.Mutex
	keys map[string]*entity.IdempotencyKey
}

func (r *fakeIdempotencyRepo) GetByKey(_ context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.keys[userID.String()+key], nil
}

func (r *fakeIdempotencyRepo) Create(_ context.Context, ikey *entity.IdempotencyKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[ikey.UserID.String()+ikey.Key] = ikey
	return nil
}

func (r *fakeIdempotencyRepo) DeleteExpired(context.Context) (int64, error) {
	return 0, nil
}

type testEnv struct {
	router   *gin.Engine
	jwt      *utils.JWTManager
	invoices *fakeInvoices
	profile  entity.SenderProfile
	token    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	profile := entity.SenderProfile{ID: uuid.New(), Name: "Alpha Ltd", InvoicePrefix: "INV"}
	account := entity.BankAccount{ID: uuid.New(), SenderProfileID: profile.ID, BankName: "First", Currency: "USD"}
	refs := &fakeReferences{ref: editor.ReferenceData{
		SenderProfiles: []entity.SenderProfile{profile},
		BankAccounts:   []entity.BankAccount{account},
	}}
	invoices := &fakeInvoices{}
	editorService := service.NewEditorService(refs, invoices, service.EditorConfig{SessionTTL: time.Hour})

	jwt := utils.NewJWTManager("secret", "invoicer-auth", time.Hour)
	router := Setup(&Handlers{
		Customer:      handler.NewCustomerHandler(nil, nil),
		Product:       handler.NewProductHandler(nil, 0),
		SenderProfile: handler.NewSenderProfileHandler(nil),
		Invoice:       handler.NewInvoiceHandler(nil),
		Editor:        handler.NewEditorHandler(editorService),
		Dashboard:     handler.NewDashboardHandler(nil),
	}, &Deps{
		JWTManager:      jwt,
		Cfg:             &config.Config{App: config.AppConfig{Name: "invoicer-api"}},
		IdempotencyRepo: &fakeIdempotencyRepo{keys: map[string]*entity.IdempotencyKey{}},
	})

	env := &testEnv{router: router, jwt: jwt, invoices: invoices, profile: profile}
	env.token = env.tokenFor(t, uuid.New())
	return env
}

func (e *testEnv) tokenFor(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := e.jwt.GenerateAccessToken(userID, "owner@example.com", nil)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return token
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

type sessionData struct {
	SessionID uuid.UUID       `json:"session_id"`
	Snapshot  editor.Snapshot `json:"snapshot"`
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	w, _ := e.do(t, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name  string
		token string
	}{
		{"missing token", ""},
		{"garbage token", "nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := e.do(t, http.MethodPost, "/api/v1/editor/sessions", tt.token, nil)
			if w.Code != http.StatusUnauthorized || env.Success {
				t.Fatalf("expected 401 got %d", w.Code)
			}
		})
	}
}

func TestEditorSessionFlow(t *testing.T) {
	e := newTestEnv(t)

	w, env := e.do(t, http.MethodPost, "/api/v1/editor/sessions", e.token, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("open: expected 201 got %d: %s", w.Code, w.Body)
	}
	opened := decode[sessionData](t, env.Data)
	base := "/api/v1/editor/sessions/" + opened.SessionID.String()
	if opened.Snapshot.Dirty {
		t.Fatalf("new session must start clean")
	}

	w, env = e.do(t, http.MethodPut, base+"/sender-profile", e.token, map[string]any{"id": e.profile.ID})
	if w.Code != http.StatusOK {
		t.Fatalf("select sender: expected 200 got %d: %s", w.Code, w.Body)
	}
	snap := decode[editor.Snapshot](t, env.Data)
	if snap.Form.InvoiceNumber != "INV-0001" || snap.Form.Currency != "USD" {
		t.Fatalf("unexpected form after selecting sender: %+v", snap.Form)
	}

	w, env = e.do(t, http.MethodPost, base+"/items", e.token, map[string]any{"custom": true})
	if w.Code != http.StatusCreated {
		t.Fatalf("add item: expected 201 got %d", w.Code)
	}
	added := decode[struct {
		Item editor.LineItem `json:"item"`
	}](t, env.Data)

	w, env = e.do(t, http.MethodPatch, base+"/items/"+added.Item.ID.String(), e.token, map[string]any{
		"name":     "Consulting",
		"quantity": "2",
		"price":    "150",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update item: expected 200 got %d: %s", w.Code, w.Body)
	}
	snap = decode[editor.Snapshot](t, env.Data)
	if !snap.View.Subtotal.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected subtotal 300 got %s", snap.View.Subtotal)
	}

	w, env = e.do(t, http.MethodPut, base+"/field", e.token, map[string]any{"key": "tax_rate", "value": 10})
	if w.Code != http.StatusOK {
		t.Fatalf("update field: expected 200 got %d: %s", w.Code, w.Body)
	}
	snap = decode[editor.Snapshot](t, env.Data)
	if !snap.View.Total.Equal(decimal.NewFromInt(330)) {
		t.Fatalf("expected total 330 got %s", snap.View.Total)
	}

	w, _ = e.do(t, http.MethodPost, base+"/save", e.token, nil, "Idempotency-Key", "save-1")
	if w.Code != http.StatusCreated {
		t.Fatalf("save: expected 201 got %d: %s", w.Code, w.Body)
	}
	first := w.Body.String()

	w, _ = e.do(t, http.MethodPost, base+"/save", e.token, nil, "Idempotency-Key", "save-1")
	if w.Code != http.StatusCreated || w.Header().Get("X-Idempotency-Replayed") != "true" {
		t.Fatalf("retried save must be replayed, got %d", w.Code)
	}
	if w.Body.String() != first {
		t.Fatalf("replayed body differs")
	}
	if n := e.invoices.createdCount(); n != 1 {
		t.Fatalf("expected one created invoice got %d", n)
	}

	w, _ = e.do(t, http.MethodDelete, base, e.token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("close: expected 204 got %d", w.Code)
	}
	w, _ = e.do(t, http.MethodGet, base, e.token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("closed session: expected 404 got %d", w.Code)
	}
}

func TestEditorErrorStatuses(t *testing.T) {
	e := newTestEnv(t)

	_, env := e.do(t, http.MethodPost, "/api/v1/editor/sessions", e.token, nil)
	base := "/api/v1/editor/sessions/" + decode[sessionData](t, env.Data).SessionID.String()

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"malformed session id", http.MethodGet, "/api/v1/editor/sessions/abc", e.token, nil, http.StatusBadRequest},
		{"unknown session", http.MethodGet, "/api/v1/editor/sessions/" + uuid.NewString(), e.token, nil, http.StatusNotFound},
		{"another owner's session", http.MethodGet, base, e.tokenFor(t, uuid.New()), nil, http.StatusNotFound},
		{"unknown sender profile", http.MethodPut, base + "/sender-profile", e.token, map[string]any{"id": uuid.New()}, http.StatusUnprocessableEntity},
		{"missing sender profile id", http.MethodPut, base + "/sender-profile", e.token, map[string]any{}, http.StatusBadRequest},
		{"currency is not a plain field", http.MethodPut, base + "/field", e.token, map[string]any{"key": "currency", "value": "EUR"}, http.StatusBadRequest},
		{"negative discount", http.MethodPatch, base + "/fields", e.token, map[string]any{"discount": "-1"}, http.StatusBadRequest},
		{"bad date", http.MethodPatch, base + "/fields", e.token, map[string]any{"due_date": "31/12/2026"}, http.StatusBadRequest},
		{"unknown item", http.MethodDelete, base + "/items/" + uuid.NewString(), e.token, nil, http.StatusNotFound},
		{"reorder out of range", http.MethodPost, base + "/reorder", e.token, map[string]any{"old_index": 0, "new_index": 3}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := e.do(t, tt.method, tt.path, tt.token, tt.body)
			if w.Code != tt.want {
				t.Fatalf("expected %d got %d: %s", tt.want, w.Code, w.Body)
			}
			if env.Success {
				t.Fatalf("error responses must not report success")
			}
		})
	}
}

func TestAdminRoutesRequireRole(t *testing.T) {
	e := newTestEnv(t)
	w, _ := e.do(t, http.MethodPost, "/api/v1/admin/invoices/mark-overdue", e.token, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", w.Code)
	}
}
