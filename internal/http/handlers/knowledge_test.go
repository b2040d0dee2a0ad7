package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	repos "github.com/yungbote/gapmap-backend/internal/data/repos/knowledge"
	types "github.com/yungbote/gapmap-backend/internal/domain/knowledge"
	"github.com/yungbote/gapmap-backend/internal/knowledge/ingest"
	"github.com/yungbote/gapmap-backend/internal/knowledge/workflow"
	"github.com/yungbote/gapmap-backend/internal/pkg/kgerr"
	"github.com/yungbote/gapmap-backend/internal/pkg/logger"
)

type fakeIngest struct {
	result *ingest.Result
	err    error
}

func (f *fakeIngest) Ingest(ctx context.Context, sourceText string) (*ingest.Result, error) {
	return f.result, f.err
}

type fakeAnalysis struct {
	report *workflow.Report
	err    error
	cfg    workflow.Config
}

func (f *fakeAnalysis) Run(ctx context.Context) (*workflow.Report, error) {
	return f.report, f.err
}

type fakeStore struct {
	learnedRow *types.Concept
	learnedErr error
	ranked     []*repos.ConceptWithDegree
	byName     *types.Concept
	relations  []*types.ConceptRelation
}

func (s *fakeStore) UpsertConcept(ctx context.Context, name, description string, embedding []float32) (*types.Concept, error) {
	return nil, errors.New("not implemented")
}

func (s *fakeStore) CreateRelation(ctx context.Context, fromName, toName string, rt types.RelationType) (*types.ConceptRelation, error) {
	return nil, errors.New("not implemented")
}

func (s *fakeStore) GetByName(ctx context.Context, name string) (*types.Concept, error) {
	return s.byName, nil
}

func (s *fakeStore) GetByVectorIDs(ctx context.Context, vectorIDs []string) ([]*types.Concept, error) {
	return nil, nil
}

func (s *fakeStore) TopByDegree(ctx context.Context, limit int) ([]*repos.ConceptWithDegree, error) {
	return s.ranked, nil
}

func (s *fakeStore) LearnedConcepts(ctx context.Context) ([]*types.Concept, error) { return nil, nil }

func (s *fakeStore) RelationsFor(ctx context.Context, conceptIDs []uuid.UUID) ([]*types.ConceptRelation, error) {
	return s.relations, nil
}

func (s *fakeStore) MarkLearned(ctx context.Context, name string, learned bool) (*types.Concept, error) {
	return s.learnedRow, s.learnedErr
}

func (s *fakeStore) Counts(ctx context.Context) (int64, int64, error) { return 3, 2, nil }

func testHandler(t *testing.T, ing *fakeIngest, st *fakeStore, analysis *fakeAnalysis) *KnowledgeHandler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	factory := func(cfg workflow.Config) workflow.Pipeline {
		if analysis != nil {
			analysis.cfg = cfg
		}
		return analysis
	}
	return NewKnowledgeHandler(log, ing, st, factory)
}

func perform(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func router(h *KnowledgeHandler) *gin.Engine {
	r := gin.New()
	r.POST("/api/ingest", h.Ingest)
	r.POST("/api/analysis/run", h.RunAnalysis)
	r.POST("/api/concepts/:name/learned", h.SetLearned)
	r.GET("/api/concepts", h.ListConcepts)
	r.GET("/api/concepts/:name", h.GetConcept)
	return r
}

func TestIngestEndpoint(t *testing.T) {
	ing := &fakeIngest{result: &ingest.Result{ConceptCount: 3, RelationCount: 2, SkippedRelations: []ingest.SkippedRelation{}}}
	h := testHandler(t, ing, &fakeStore{}, nil)
	r := router(h)

	w := perform(r, "POST", "/api/ingest", `{"text":"caches and eviction"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var got ingest.Result
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ConceptCount != 3 || got.RelationCount != 2 {
		t.Fatalf("result = %+v", got)
	}

	// Missing body
	w = perform(r, "POST", "/api/ingest", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing text: status = %d", w.Code)
	}
}

func TestIngestEndpointErrorMapping(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{&kgerr.ExtractionError{Reason: "bad"}, http.StatusUnprocessableEntity, "EXTRACTION_ERROR"},
		{&kgerr.EmbeddingError{Chunk: 0, Err: errors.New("down")}, http.StatusBadGateway, "EMBEDDING_ERROR"},
		{&kgerr.PersistenceError{Concept: "c", Err: errors.New("db")}, http.StatusInternalServerError, "PERSISTENCE_ERROR"},
		{errors.New("other"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		h := testHandler(t, &fakeIngest{err: tc.err}, &fakeStore{}, nil)
		w := perform(router(h), "POST", "/api/ingest", `{"text":"x"}`)
		if w.Code != tc.wantStatus {
			t.Fatalf("%v: status = %d, want %d", tc.err, w.Code, tc.wantStatus)
		}
		if !strings.Contains(w.Body.String(), tc.wantCode) {
			t.Fatalf("%v: body missing code %s: %s", tc.err, tc.wantCode, w.Body.String())
		}
	}
}

func TestRunAnalysisEndpoint(t *testing.T) {
	analysis := &fakeAnalysis{report: &workflow.Report{Gap: 60}}
	h := testHandler(t, &fakeIngest{}, &fakeStore{}, analysis)
	r := router(h)

	w := perform(r, "POST", "/api/analysis/run", `{"question_count":5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	if analysis.cfg.QuestionCount != 5 {
		t.Fatalf("config override not passed: %+v", analysis.cfg)
	}
	if !strings.Contains(w.Body.String(), `"gap":60`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestRunAnalysisErrorMapping(t *testing.T) {
	analysis := &fakeAnalysis{err: &kgerr.GradingParseError{QuestionIndex: 0, Reason: "bad shape"}}
	h := testHandler(t, &fakeIngest{}, &fakeStore{}, analysis)

	w := perform(router(h), "POST", "/api/analysis/run", "")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "GRADING_PARSE_ERROR") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestSetLearnedEndpoint(t *testing.T) {
	st := &fakeStore{learnedRow: &types.Concept{Name: "Cache", IsLearned: true}}
	h := testHandler(t, &fakeIngest{}, st, nil)
	r := router(h)

	w := perform(r, "POST", "/api/concepts/Cache/learned", `{"learned":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}

	// false is a valid value, not a missing field
	w = perform(r, "POST", "/api/concepts/Cache/learned", `{"learned":false}`)
	if w.Code != http.StatusOK {
		t.Fatalf("learned=false: status = %d body=%s", w.Code, w.Body.String())
	}

	w = perform(r, "POST", "/api/concepts/Cache/learned", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing learned: status = %d", w.Code)
	}

	st.learnedRow = nil
	w = perform(r, "POST", "/api/concepts/Ghost/learned", `{"learned":true}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown concept: status = %d", w.Code)
	}
}

func TestGetConceptEndpoint(t *testing.T) {
	row := &types.Concept{ID: uuid.New(), Name: "Cache", IsLearned: true}
	st := &fakeStore{
		byName: row,
		relations: []*types.ConceptRelation{{
			FromConceptID: row.ID,
			ToConceptID:   uuid.New(),
			RelationType:  types.RelationUses,
		}},
	}
	h := testHandler(t, &fakeIngest{}, st, nil)
	r := router(h)

	w := perform(r, "GET", "/api/concepts/Cache", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, frag := range []string{`"name":"Cache"`, `"relation_type":"uses"`} {
		if !strings.Contains(body, frag) {
			t.Fatalf("body missing %s: %s", frag, body)
		}
	}

	st.byName = nil
	w = perform(r, "GET", "/api/concepts/Ghost", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown concept: status = %d", w.Code)
	}
}

func TestListConceptsEndpoint(t *testing.T) {
	ranked := []*repos.ConceptWithDegree{{Degree: 2}}
	ranked[0].Name = "Cache"
	st := &fakeStore{ranked: ranked}
	h := testHandler(t, &fakeIngest{}, st, nil)
	r := router(h)

	w := perform(r, "GET", "/api/concepts?limit=1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, frag := range []string{`"concept_count":3`, `"relation_count":2`, `"degree":2`} {
		if !strings.Contains(body, frag) {
			t.Fatalf("body missing %s: %s", frag, body)
		}
	}

	w = perform(r, "GET", "/api/concepts?limit=-1", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("negative limit: status = %d", w.Code)
	}
}
