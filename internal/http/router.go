package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/gapmap-backend/internal/http/handlers"
	httpMW "github.com/yungbote/gapmap-backend/internal/http/middleware"
	"github.com/yungbote/gapmap-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	KnowledgeHandler *httpH.KnowledgeHandler
	HealthHandler    *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(httpMW.CORS())
	r.Use(httpMW.RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.KnowledgeHandler != nil {
			api.POST("/ingest", cfg.KnowledgeHandler.Ingest)
			api.POST("/analysis/run", cfg.KnowledgeHandler.RunAnalysis)
			api.POST("/concepts/:name/learned", cfg.KnowledgeHandler.SetLearned)
			api.GET("/concepts", cfg.KnowledgeHandler.ListConcepts)
			api.GET("/concepts/:name", cfg.KnowledgeHandler.GetConcept)
		}
	}

	return r
}
