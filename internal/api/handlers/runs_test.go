package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/seesaw/mfses/internal/contracts"
	"github.com/seesaw/mfses/pkg/config"
	"github.com/seesaw/mfses/pkg/logger"
)

type fakeRunRepo struct {
	runs []*contracts.PipelineRun
}

func (f *fakeRunRepo) Create(_ context.Context, _ *contracts.PipelineRun) error { return nil }
func (f *fakeRunRepo) Finish(_ context.Context, _ *contracts.PipelineRun) error { return nil }

func (f *fakeRunRepo) Get(_ context.Context, id string) (*contracts.PipelineRun, error) {
	for _, run := range f.runs {
		if run.ID == id {
			return run, nil
		}
	}
	return nil, nil
}

func (f *fakeRunRepo) ListRecent(_ context.Context, limit int) ([]*contracts.PipelineRun, error) {
	if limit > len(f.runs) {
		limit = len(f.runs)
	}
	return f.runs[:limit], nil
}

func (f *fakeRunRepo) PruneRuns(_ context.Context, _ time.Time) (int64, error) { return 0, nil }

func newRunsHandler(repo *fakeRunRepo) *RunsHandler {
	cfg := &config.Config{}
	cfg.Pipeline.CycleTimeout = time.Minute
	return NewRunsHandler(nil, repo, cfg, logger.NewNop())
}

func TestListRuns(t *testing.T) {
	repo := &fakeRunRepo{runs: []*contracts.PipelineRun{
		{ID: "a", Status: contracts.RunSuccess},
		{ID: "b", Status: contracts.RunFailed},
	}}
	h := newRunsHandler(repo)

	req := httptest.NewRequest("GET", "/api/runs", nil)
	rec := httptest.NewRecorder()
	h.ListRuns(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestListRunsRejectsBadLimit(t *testing.T) {
	h := newRunsHandler(&fakeRunRepo{})

	req := httptest.NewRequest("GET", "/api/runs?limit=zero", nil)
	rec := httptest.NewRecorder()
	h.ListRuns(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetRunNotFound(t *testing.T) {
	h := newRunsHandler(&fakeRunRepo{})

	req := httptest.NewRequest("GET", "/api/runs/missing", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "missing"})
	rec := httptest.NewRecorder()
	h.GetRun(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestTriggerRunConflictWhileBusy(t *testing.T) {
	h := newRunsHandler(&fakeRunRepo{})
	h.busy.Store(true)

	req := httptest.NewRequest("POST", "/api/pipeline/run", nil)
	rec := httptest.NewRecorder()
	h.TriggerRun(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}
