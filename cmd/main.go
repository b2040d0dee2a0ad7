package main

import (
	"fmt"
	"os"
	"time"

	"github.com/yungbote/gapmap-backend/internal/clients/openai"
	"github.com/yungbote/gapmap-backend/internal/clients/pinecone"
	redisc "github.com/yungbote/gapmap-backend/internal/clients/redis"
	"github.com/yungbote/gapmap-backend/internal/data/db"
	repos "github.com/yungbote/gapmap-backend/internal/data/repos/knowledge"
	httpapi "github.com/yungbote/gapmap-backend/internal/http"
	"github.com/yungbote/gapmap-backend/internal/http/handlers"
	"github.com/yungbote/gapmap-backend/internal/knowledge/embed"
	"github.com/yungbote/gapmap-backend/internal/knowledge/extract"
	"github.com/yungbote/gapmap-backend/internal/knowledge/ingest"
	"github.com/yungbote/gapmap-backend/internal/knowledge/prompts"
	"github.com/yungbote/gapmap-backend/internal/knowledge/retrieval"
	"github.com/yungbote/gapmap-backend/internal/knowledge/store"
	"github.com/yungbote/gapmap-backend/internal/knowledge/workflow"
	"github.com/yungbote/gapmap-backend/internal/pkg/envutil"
	"github.com/yungbote/gapmap-backend/internal/pkg/logger"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Prompts
	prompts.RegisterAll()

	// Env
	log.Info("Loading environment variables from main...")
	listenAddr := envutil.GetEnv("LISTEN_ADDR", ":8080", log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	conceptRepo := repos.NewConceptRepo(thePG, log)
	relationRepo := repos.NewRelationRepo(thePG, log)

	// Clients
	log.Info("Setting up Clients from main...")
	openaiClient, err := openai.NewClient(log)
	if err != nil {
		log.Error("Could not init OpenAIClient", "error", err)
		os.Exit(1)
	}
	pineconeClient, err := pinecone.New(log, pinecone.Config{
		APIKey:  os.Getenv("PINECONE_API_KEY"),
		Timeout: 30 * time.Second,
	})
	if err != nil {
		log.Error("Could not init PineconeClient", "error", err)
		os.Exit(1)
	}
	vectorStore, err := pinecone.NewVectorStore(log, pineconeClient)
	if err != nil {
		log.Error("Could not init VectorStore", "error", err)
		os.Exit(1)
	}
	var embedCache redisc.EmbedCache
	if os.Getenv("REDIS_ADDR") != "" {
		embedCache, err = redisc.NewEmbedCache(log)
		if err != nil {
			log.Warn("Could not init EmbedCache; continuing without it", "error", err)
			embedCache = nil
		}
	}

	// Services
	log.Info("Setting up Services from main...")
	conceptStore := store.NewConceptStore(log, thePG, conceptRepo, relationRepo, vectorStore)
	embedder := embed.NewEmbedder(log, openaiClient, embedCache)
	extractor := extract.NewExtractor(log, openaiClient)
	ingestPipeline := ingest.NewPipeline(log, extractor, embedder, conceptStore)
	retrievalIndex := retrieval.NewIndex(log, vectorStore, conceptStore)

	analysisFactory := func(cfg workflow.Config) workflow.Pipeline {
		return workflow.NewPipeline(log, cfg, openaiClient, conceptStore, embedder, retrievalIndex)
	}

	// Handlers
	log.Info("Setting up Handlers from main...")
	knowledgeHandler := handlers.NewKnowledgeHandler(log, ingestPipeline, conceptStore, analysisFactory)
	healthHandler := handlers.NewHealthHandler()

	// Server
	server := httpapi.NewServer(httpapi.RouterConfig{
		Log:              log,
		KnowledgeHandler: knowledgeHandler,
		HealthHandler:    healthHandler,
	})

	log.Info("Starting HTTP server", "addr", listenAddr)
	if err := server.Run(listenAddr); err != nil {
		log.Error("HTTP server exited", "error", err)
		os.Exit(1)
	}
}
