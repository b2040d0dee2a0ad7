package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/gapmap-backend/internal/http/response"
	"github.com/yungbote/gapmap-backend/internal/knowledge/ingest"
	"github.com/yungbote/gapmap-backend/internal/knowledge/store"
	"github.com/yungbote/gapmap-backend/internal/knowledge/workflow"
	"github.com/yungbote/gapmap-backend/internal/pkg/kgerr"
	"github.com/yungbote/gapmap-backend/internal/pkg/logger"
)

// PipelineFactory builds a gap analysis pipeline for one run, letting the
// request override the default knob values.
type PipelineFactory func(cfg workflow.Config) workflow.Pipeline

type KnowledgeHandler struct {
	log       *logger.Logger
	ingestion ingest.Pipeline
	store     store.ConceptStore
	analysis  PipelineFactory
}

func NewKnowledgeHandler(
	log *logger.Logger,
	ingestion ingest.Pipeline,
	st store.ConceptStore,
	analysis PipelineFactory,
) *KnowledgeHandler {
	return &KnowledgeHandler{
		log:       log.With("handler", "KnowledgeHandler"),
		ingestion: ingestion,
		store:     st,
		analysis:  analysis,
	}
}

type ingestRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *KnowledgeHandler) Ingest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}

	result, err := h.ingestion.Ingest(c.Request.Context(), req.Text)
	if err != nil {
		status, code := classifyError(err)
		response.RespondError(c, status, code, err)
		return
	}
	response.RespondOK(c, result)
}

type runAnalysisRequest struct {
	SeedCount     int `json:"seed_count"`
	QuestionCount int `json:"question_count"`
	RetrievalK    int `json:"retrieval_k"`
}

func (h *KnowledgeHandler) RunAnalysis(c *gin.Context) {
	var req runAnalysisRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
			return
		}
	}

	pipeline := h.analysis(workflow.Config{
		SeedCount:     req.SeedCount,
		QuestionCount: req.QuestionCount,
		RetrievalK:    req.RetrievalK,
	})

	report, err := pipeline.Run(c.Request.Context())
	if err != nil {
		status, code := classifyError(err)
		response.RespondError(c, status, code, err)
		return
	}
	response.RespondOK(c, report)
}

type setLearnedRequest struct {
	Learned *bool `json:"learned" binding:"required"`
}

func (h *KnowledgeHandler) SetLearned(c *gin.Context) {
	name := c.Param("name")
	var req setLearnedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}

	row, err := h.store.MarkLearned(c.Request.Context(), name, *req.Learned)
	if err != nil {
		status, code := classifyError(err)
		response.RespondError(c, status, code, err)
		return
	}
	if row == nil {
		response.RespondError(c, http.StatusNotFound, "CONCEPT_NOT_FOUND", errors.New("concept not found: "+name))
		return
	}
	response.RespondOK(c, row)
}

func (h *KnowledgeHandler) GetConcept(c *gin.Context) {
	name := c.Param("name")

	row, err := h.store.GetByName(c.Request.Context(), name)
	if err != nil {
		status, code := classifyError(err)
		response.RespondError(c, status, code, err)
		return
	}
	if row == nil {
		response.RespondError(c, http.StatusNotFound, "CONCEPT_NOT_FOUND", errors.New("concept not found: "+name))
		return
	}

	relations, err := h.store.RelationsFor(c.Request.Context(), []uuid.UUID{row.ID})
	if err != nil {
		status, code := classifyError(err)
		response.RespondError(c, status, code, err)
		return
	}

	response.RespondOK(c, gin.H{
		"concept":   row,
		"relations": relations,
	})
}

func (h *KnowledgeHandler) ListConcepts(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", errors.New("limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	rows, err := h.store.TopByDegree(c.Request.Context(), limit)
	if err != nil {
		status, code := classifyError(err)
		response.RespondError(c, status, code, err)
		return
	}

	conceptCount, relationCount, err := h.store.Counts(c.Request.Context())
	if err != nil {
		status, code := classifyError(err)
		response.RespondError(c, status, code, err)
		return
	}

	response.RespondOK(c, gin.H{
		"concepts":       rows,
		"concept_count":  conceptCount,
		"relation_count": relationCount,
	})
}

// classifyError maps domain error types onto HTTP status + stable code.
func classifyError(err error) (int, string) {
	var extraction *kgerr.ExtractionError
	if errors.As(err, &extraction) {
		return http.StatusUnprocessableEntity, "EXTRACTION_ERROR"
	}
	var embedding *kgerr.EmbeddingError
	if errors.As(err, &embedding) {
		return http.StatusBadGateway, "EMBEDDING_ERROR"
	}
	var persistence *kgerr.PersistenceError
	if errors.As(err, &persistence) {
		return http.StatusInternalServerError, "PERSISTENCE_ERROR"
	}
	var retrievalErr *kgerr.RetrievalError
	if errors.As(err, &retrievalErr) {
		return http.StatusBadGateway, "RETRIEVAL_ERROR"
	}
	var grading *kgerr.GradingParseError
	if errors.As(err, &grading) {
		return http.StatusBadGateway, "GRADING_PARSE_ERROR"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}
