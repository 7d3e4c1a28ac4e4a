// @title           ChatPDF API
// @version         1.0
// @description     Upload a PDF and ask questions about it. Uploads and questions run as asynchronous jobs.
// @termsOfService  http://swagger.io/terms/

// @contact.name    API Support

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/ChatPDF/internal/config"
	"github.com/akolanti/ChatPDF/internal/data/store"
	jobmodel "github.com/akolanti/ChatPDF/internal/domain/jobModel"
	"github.com/akolanti/ChatPDF/internal/handlers"
	"github.com/akolanti/ChatPDF/internal/job"
	"github.com/akolanti/ChatPDF/internal/mcpserver"
	"github.com/akolanti/ChatPDF/internal/middleware"
	"github.com/akolanti/ChatPDF/internal/rag"
	"github.com/akolanti/ChatPDF/internal/rag/embedding"
	"github.com/akolanti/ChatPDF/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/ChatPDF/internal/rag/embedding/huggingFaceEmbedding"
	"github.com/akolanti/ChatPDF/internal/rag/ingest"
	"github.com/akolanti/ChatPDF/internal/rag/llm"
	"github.com/akolanti/ChatPDF/internal/rag/llm/gemini"
	"github.com/akolanti/ChatPDF/internal/rag/llm/groq"
	"github.com/akolanti/ChatPDF/internal/rag/vectorDB"
	"github.com/akolanti/ChatPDF/internal/rag/vectorDB/chromemDB"
	"github.com/akolanti/ChatPDF/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/ChatPDF/internal/server"
	"github.com/akolanti/ChatPDF/internal/session"
	"github.com/akolanti/ChatPDF/internal/worker"
	"github.com/akolanti/ChatPDF/pkg/logger_i"
	"github.com/joho/godotenv"
)

var (
	listenAddr        string
	configPath        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {
	//config
	flag.StringVar(&configPath, "config", "", "path to the YAML config file")
	flag.StringVar(&listenAddr, "listen-addr", "", "server listen address, overrides the config file")
	flag.Parse()

	_ = godotenv.Load()
	settings, err := config.Load(configPath)
	if err != nil {
		println("invalid configuration:", err.Error())
		os.Exit(1)
	}
	if listenAddr == "" {
		listenAddr = settings.ListenAddr
	}

	logger_i.Init(settings.LogLevel, settings.Prod)
	var logger = logger_i.NewLogger("main")

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and job store
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	}
	logger.Info("Starting job service")

	if redisJobStore := store.GetRedisJobStore(serviceContext, settings.Redis); redisJobStore != nil {
		serviceConfig.JobStore = redisJobStore
	} else {
		logger.Warn("Redis job store is offline, keeping jobs in memory")
		serviceConfig.JobStore = store.InitInMemoryJobStore(settings.Redis.JobTTL)
	}
	service := job.InitJobService(serviceConfig)

	embedder := newEmbedder(serviceContext, settings)
	llmProvider := newLLM(serviceContext, settings)
	indexBuilder := newIndexBuilder(serviceContext, settings)

	if embedder == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "EmbeddingService", embedder != nil, "LLMProvider", llmProvider != nil)
		return
	}

	// embedders are stateless API clients, every session shares the one built here
	sessions := session.NewRegistry(func() embedding.Embedder { return embedder }, settings.Ingest, settings.Sessions)
	go sessions.Run(serviceContext)
	go server.PruneRateLimiters(serviceContext, settings.Sessions.SweepInterval)

	uploadDir := ingest.UploadDir(settings.Ingest.UploadDir)
	if n := ingest.CleanupStaleUploads(uploadDir, config.IngestJobTimeout); n > 0 {
		logger.Info("Removed stale uploads", "count", n, "dir", uploadDir)
	}

	pipeline := ingest.NewPipeline(settings.Ingest, indexBuilder)
	ragService := rag.NewService(sessions, pipeline, llmProvider, settings.Retrieval.TopK)

	handlers.InitJobHandler(service, sessions, settings.Ingest)
	middleware.Init(settings, sessions)

	//init worker pool
	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	mcp := mcpserver.New(sessions, ragService)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		Sessions:         sessions,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr, mcp.Handler())

	<-stopExecution
	logger.Info("Server stopped")
}

func newEmbedder(ctx context.Context, settings *config.Settings) embedding.Embedder {
	if settings.Embedding.Provider == config.EmbeddingProviderGemini {
		return googleEmbedding.GetGoogleEmbeddingClient(ctx, settings.Embedding.Model, settings.Embedding.APIKey)
	}
	e, err := huggingFaceEmbedding.NewHuggingFaceEmbedder(settings.Embedding.Model, settings.Embedding.APIKey, settings.Ingest.BatchSize)
	if err != nil {
		logger_i.NewLogger("main").Error("HuggingFace embedder unavailable", "error", err)
		return nil
	}
	return e
}

func newLLM(ctx context.Context, settings *config.Settings) llm.Provider {
	if settings.LLM.Provider == config.LLMProviderGemini {
		return gemini.GetGeminiClient(ctx, settings.LLM.APIKey, settings.LLM.Model, settings.LLM.Temperature)
	}
	p, err := groq.NewGroqClient(groq.Options{
		APIKey:      settings.LLM.APIKey,
		BaseURL:     settings.LLM.BaseURL,
		ModelName:   settings.LLM.Model,
		Temperature: settings.LLM.Temperature,
		Timeout:     settings.LLM.Timeout,
	})
	if err != nil {
		logger_i.NewLogger("main").Error("Groq client unavailable", "error", err)
		return nil
	}
	return p
}

// qdrant is optional, an unreachable server falls back to the in-process store
func newIndexBuilder(ctx context.Context, settings *config.Settings) vectorDB.Builder {
	if settings.VectorStore.Backend == config.VectorBackendQdrant {
		if q := qdrantDB.GetQuadrantClient(ctx, settings.VectorStore); q != nil {
			return q
		}
		logger_i.NewLogger("main").Warn("Qdrant is unreachable, using the in-process vector store")
	}
	return chromemDB.NewStore()
}
