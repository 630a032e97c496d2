//go:build !integration

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubelocal/partners-cli/internal/model"
)

type fakeRunsStore struct {
	runs    []model.ImportRun
	listErr error
}

func (s *fakeRunsStore) ReserveCodes(context.Context, int) (int64, error) { return 0, nil }
func (s *fakeRunsStore) UpsertEstablishment(context.Context, *model.Establishment) error {
	return nil
}
func (s *fakeRunsStore) SpecialtiesByCategory(context.Context, string) ([]string, error) {
	return nil, nil
}
func (s *fakeRunsStore) ListMissingCoordinates(context.Context, int) ([]model.EstablishmentRef, error) {
	return nil, nil
}
func (s *fakeRunsStore) UpdateCoordinates(context.Context, int64, float64, float64) error {
	return nil
}
func (s *fakeRunsStore) CreateRun(context.Context, *model.ImportRun) error { return nil }
func (s *fakeRunsStore) CompleteRun(context.Context, string, string, *model.ImportReport) error {
	return nil
}
func (s *fakeRunsStore) ListRuns(context.Context, int) ([]model.ImportRun, error) {
	return s.runs, s.listErr
}
func (s *fakeRunsStore) Migrate(context.Context) error { return nil }
func (s *fakeRunsStore) Close() error                  { return nil }

func TestRouter_Health(t *testing.T) {
	router := buildRouter(context.Background(), &serveState{}, &fakeRunsStore{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_LastImportNotFound(t *testing.T) {
	router := buildRouter(context.Background(), &serveState{}, &fakeRunsStore{})

	req := httptest.NewRequest(http.MethodGet, "/imports/last", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouter_LastImport(t *testing.T) {
	state := &serveState{lastReport: &model.ImportReport{RunID: "run-1", Total: 3, Imported: 3}}
	router := buildRouter(context.Background(), state, &fakeRunsStore{})

	req := httptest.NewRequest(http.MethodGet, "/imports/last", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var report model.ImportReport
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, 3, report.Imported)
}

func TestRouter_Runs(t *testing.T) {
	st := &fakeRunsStore{runs: []model.ImportRun{{ID: "run-1", Status: model.RunStatusComplete}}}
	router := buildRouter(context.Background(), &serveState{}, st)

	req := httptest.NewRequest(http.MethodGet, "/runs", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var runs []model.ImportRun
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
}

func TestRouter_RunsStoreError(t *testing.T) {
	st := &fakeRunsStore{listErr: eris.New("store down")}
	router := buildRouter(context.Background(), &serveState{}, st)

	req := httptest.NewRequest(http.MethodGet, "/runs", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestRouter_SweepStatusEmpty(t *testing.T) {
	router := buildRouter(context.Background(), &serveState{}, &fakeRunsStore{})

	req := httptest.NewRequest(http.MethodGet, "/sweep/status", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var status map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.EqualValues(t, 0, status["total"])
	assert.Equal(t, false, status["running"])
}

func TestRouter_UploadConflict(t *testing.T) {
	state := &serveState{importing: true}
	router := buildRouter(context.Background(), state, &fakeRunsStore{})

	req := httptest.NewRequest(http.MethodPost, "/imports", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestRouter_UploadMissingFile(t *testing.T) {
	router := buildRouter(context.Background(), &serveState{}, &fakeRunsStore{})

	req := httptest.NewRequest(http.MethodPost, "/imports", nil)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
