package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD                     = false
	LOG_LEVEL_PROD              = slog.LevelInfo
	TRACE_ID_KEY                = "traceId"
	SESSION_ID_KEY              = "sessionId"
	TRACE_ID_HEADER             = "X-Trace-Id"
	SESSION_ID_HEADER           = "X-Session-Id"
	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute
	//IdleWorkerTimeout = 1 * time.Second //fo tests

	//ingest jobs embed whole documents, queries only one question
	IngestJobTimeout = 5 * time.Minute
	QueryJobTimeout  = 60 * time.Second

	//serverTimeouts
	ReadTimeout            = 30 * time.Second
	WriteTimeout           = QueryJobTimeout + 15*time.Second //ask_document over /mcp answers synchronously
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//ingestion
	ChunkSize          = 1000
	ChunkOverlap       = 200
	MaxIndexedPages    = 50
	EmbeddingBatchSize = 100
	MaxUploadSize      = 32 << 20 //32mb
	PageExtractTimeout = 10 * time.Second
	UploadDirName      = "chatpdf-uploads"

	//retrieval - the number of chunks handed to the prompt
	RetrievalTopK = 4

	//sessions
	SessionIdleTimeout   = 2 * time.Hour
	SessionSweepInterval = 5 * time.Minute

	//vectorDB
	VectorBackendChromem    = "chromem"
	VectorBackendQdrant     = "qdrant"
	QdrantConnectionTimeout = 30 * time.Second
	QdrantHost              = "localhost"
	QdrantGrpcPort          = 6334
	QdrantUseTLS            = false //set for https
	QdrantPoolSize          = 1     //2-5 is preferred for prod according to documentation
	QdrantCollectionPrefix  = "chatpdf"

	//llm
	LLMProviderGroq      = "groq"
	LLMProviderGemini    = "gemini"
	GroqBaseURL          = "https://api.groq.com/openai/v1"
	GroqModelName        = "mixtral-8x7b-32768"
	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	LLMConnectionTimeout = 30 * time.Second

	ModelTemperature float32 = 0.7

	//embeddings
	EmbeddingProviderHuggingFace = "huggingface"
	EmbeddingProviderGemini      = "gemini"
	HuggingFaceEmbeddingModel    = "sentence-transformers/all-mpnet-base-v2"
	GoogleEmbeddingModel         = "gemini-embedding-001"

	EmbeddingOutputDimensionality int32 = 768

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	//redis has 16 DB we can use
	RedisJobStore = 0

	//redis timeouts
	RedisJobStoreTTL      = 24 * time.Hour
	RedisPingTimeout      = 3 * time.Second
	RedisReadWriteTimeout = 30 * time.Second

	//mcp
	MCPServerName    = "chatpdf"
	MCPServerVersion = "1.0.0"
)
