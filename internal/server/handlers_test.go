package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"carport-configurator/internal/catalog"
	"carport-configurator/internal/configuration"
	"carport-configurator/internal/pipeline"
	"carport-configurator/internal/session"
	"carport-configurator/internal/storage"
)

type fakeCatalog struct {
	entities []catalog.Entity
	err      error
}

func (f *fakeCatalog) List(_ context.Context, _ catalog.ProductLine, _ catalog.Kind) ([]catalog.Entity, error) {
	return f.entities, f.err
}

type fakeAssembler struct {
	rec *configuration.Record
	err error
}

func (f *fakeAssembler) Assemble(_ context.Context, _ catalog.ProductLine, _ configuration.Selection) (*configuration.Record, error) {
	return f.rec, f.err
}

type fakeSubmitter struct {
	result pipeline.Result
	calls  int
}

func (f *fakeSubmitter) Submit(_ context.Context, _ *configuration.Record) pipeline.Result {
	f.calls++
	return f.result
}

type fakeSessions struct {
	sessions map[string]*session.Session
	cleared  []string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: map[string]*session.Session{}}
}

func (f *fakeSessions) Start(_ context.Context, line catalog.ProductLine) (*session.Session, error) {
	if !line.Valid() {
		return nil, fmt.Errorf("unknown product line: %q", line)
	}
	sess := &session.Session{ID: fmt.Sprintf("sess-%d", len(f.sessions)+1), ProductLine: line}
	f.sessions[sess.ID] = sess
	return sess, nil
}

func (f *fakeSessions) Get(_ context.Context, id string) (*session.Session, error) {
	if sess, ok := f.sessions[id]; ok {
		return sess, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeSessions) SetStep(ctx context.Context, id string, key configuration.StepKey, value json.RawMessage) (*session.Session, error) {
	sess, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sess.Selection.ApplyStep(key, value); err != nil {
		return nil, err
	}
	return sess, nil
}

func (f *fakeSessions) Clear(_ context.Context, id string) error {
	delete(f.sessions, id)
	f.cleared = append(f.cleared, id)
	return nil
}

type fakeAdminStore struct {
	admin *storage.AdminUser
	rows  []storage.ConfigurationRow
}

func (f *fakeAdminStore) GetAdminByUsername(_ context.Context, username string) (*storage.AdminUser, error) {
	if f.admin != nil && f.admin.Username == username {
		return f.admin, nil
	}
	return nil, errors.New("admin not found")
}

func (f *fakeAdminStore) ListConfigurations(_ context.Context, _ catalog.ProductLine) ([]storage.ConfigurationRow, error) {
	return f.rows, nil
}

func (f *fakeAdminStore) UpdateConfigurationStatus(_ context.Context, _ catalog.ProductLine, _ int64, _ string) error {
	return nil
}

func (f *fakeAdminStore) ExportConfigurationsToExcel(_ context.Context, _ catalog.ProductLine) ([]byte, error) {
	return []byte("xlsx"), nil
}

type fakeTokens struct {
	data map[string][]byte
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{data: map[string][]byte{}}
}

func (f *fakeTokens) Get(_ context.Context, key string) ([]byte, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeTokens) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	f.data[key] = data
	return nil
}

func (f *fakeTokens) Del(_ context.Context, key string) error {
	delete(f.data, key)
	return nil
}

type serverDeps struct {
	catalog   *fakeCatalog
	assembler *fakeAssembler
	submitter *fakeSubmitter
	sessions  *fakeSessions
	admin     *fakeAdminStore
	tokens    *fakeTokens
}

func newTestServer() (*Server, *serverDeps) {
	deps := &serverDeps{
		catalog:   &fakeCatalog{},
		assembler: &fakeAssembler{},
		submitter: &fakeSubmitter{},
		sessions:  newFakeSessions(),
		admin:     &fakeAdminStore{},
		tokens:    newFakeTokens(),
	}
	srv := New(
		deps.catalog,
		deps.assembler,
		deps.submitter,
		deps.sessions,
		deps.admin,
		deps.tokens,
		time.Hour,
		zap.NewNop(),
	)
	return srv, deps
}

func doJSON(t *testing.T, srv *Server, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleSubmit_Success(t *testing.T) {
	srv, deps := newTestServer()
	deps.submitter.result = pipeline.Result{Success: true, ID: 42, EmailSent: true}

	rec := doJSON(t, srv, "POST", "/api/configurations", map[string]any{
		"product_line": "wood",
		"wood":         map[string]string{"model_id": "m-1"},
	}, nil)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var result struct {
		Success   bool  `json:"success"`
		ID        int64 `json:"id"`
		EmailSent bool  `json:"email_sent"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, int64(42), result.ID)
	assert.True(t, result.EmailSent)
}

func TestHandleSubmit_ValidationError(t *testing.T) {
	srv, deps := newTestServer()
	validationErr := &pipeline.ValidationError{Reason: "model selection is required"}
	deps.submitter.result = pipeline.Result{Error: validationErr.Reason, Err: validationErr}

	rec := doJSON(t, srv, "POST", "/api/configurations", map[string]any{"product_line": "steel"}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.Equal(t, "model selection is required", result.Error)
}

func TestHandleSubmit_PersistenceError(t *testing.T) {
	srv, deps := newTestServer()
	persistErr := &pipeline.PersistenceError{Err: errors.New("connection refused")}
	deps.submitter.result = pipeline.Result{Error: "could not save your configuration, please try again", Err: persistErr}

	rec := doJSON(t, srv, "POST", "/api/configurations", map[string]any{"product_line": "steel"}, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleCatalogList(t *testing.T) {
	srv, deps := newTestServer()
	deps.catalog.entities = []catalog.Entity{{ID: "id-1", Name: "Basic"}}

	rec := doJSON(t, srv, "GET", "/api/catalog/models?product_line=steel", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var entities []catalog.Entity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entities))
	require.Len(t, entities, 1)
	assert.Equal(t, "Basic", entities[0].Name)
}

func TestHandleCatalogList_BadInput(t *testing.T) {
	srv, _ := newTestServer()

	rec := doJSON(t, srv, "GET", "/api/catalog/widgets?product_line=steel", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, srv, "GET", "/api/catalog/models", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionFlow(t *testing.T) {
	srv, deps := newTestServer()
	deps.assembler.rec = &configuration.Record{ProductLine: catalog.LineWood}
	deps.submitter.result = pipeline.Result{Success: true, ID: 7}

	// Start.
	rec := doJSON(t, srv, "POST", "/api/sessions", map[string]string{"product_line": "wood"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var sess session.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	require.NotEmpty(t, sess.ID)

	// Step write.
	rec = doJSON(t, srv, "PUT", "/api/sessions/"+sess.ID+"/steps/model", "model-1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Submit clears the session on success.
	rec = doJSON(t, srv, "POST", "/api/sessions/"+sess.ID+"/submit", nil, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, deps.sessions.cleared, sess.ID)
	assert.Equal(t, 1, deps.submitter.calls)
}

func TestSessionSubmit_FailureKeepsSession(t *testing.T) {
	srv, deps := newTestServer()
	deps.assembler.rec = &configuration.Record{ProductLine: catalog.LineWood}
	validationErr := &pipeline.ValidationError{Reason: "surface selection is required"}
	deps.submitter.result = pipeline.Result{Error: validationErr.Reason, Err: validationErr}

	rec := doJSON(t, srv, "POST", "/api/sessions", map[string]string{"product_line": "wood"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var sess session.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))

	rec = doJSON(t, srv, "POST", "/api/sessions/"+sess.ID+"/submit", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, deps.sessions.cleared, "session survives a failed submission for retry")
}

func TestAdminLoginAndAuth(t *testing.T) {
	srv, deps := newTestServer()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	deps.admin.admin = &storage.AdminUser{ID: 1, Username: "admin", PasswordHash: string(hash)}

	// Wrong password.
	rec := doJSON(t, srv, "POST", "/api/admin/login", map[string]string{"username": "admin", "password": "nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Correct login issues a token.
	rec = doJSON(t, srv, "POST", "/api/admin/login", map[string]string{"username": "admin", "password": "s3cret"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)

	// Guarded endpoint rejects missing and accepts valid tokens.
	rec = doJSON(t, srv, "GET", "/api/admin/configurations?product_line=steel", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, srv, "GET", "/api/admin/configurations?product_line=steel", nil,
		map[string]string{"Authorization": "Bearer " + login.Token})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminStatusUpdate(t *testing.T) {
	srv, deps := newTestServer()
	deps.tokens.data[adminTokenKey("tok")] = []byte("admin")

	rec := doJSON(t, srv, "PATCH", "/api/admin/configurations/42/status?product_line=wood",
		map[string]string{"status": "in_progress"},
		map[string]string{"Authorization": "Bearer tok"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, "PATCH", "/api/admin/configurations/not-a-number/status?product_line=wood",
		map[string]string{"status": "in_progress"},
		map[string]string{"Authorization": "Bearer tok"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
