package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultConfigPath = "configs/config.yaml"

// Settings holds everything that may differ between deployments. Defaults come
// from the constants in this package, an optional YAML file overrides them and
// environment variables win over both. Secrets are only read from the environment.
type Settings struct {
	ListenAddr   string `yaml:"listen_addr"`
	LogLevel     string `yaml:"log_level"`
	Prod         bool   `yaml:"prod"`
	NoAuthBypass bool   `yaml:"no_auth_bypass"`
	AuthToken    string `yaml:"-"`

	Ingest      IngestSettings      `yaml:"ingest"`
	Retrieval   RetrievalSettings   `yaml:"retrieval"`
	Embedding   EmbeddingSettings   `yaml:"embedding"`
	LLM         LLMSettings         `yaml:"llm"`
	VectorStore VectorStoreSettings `yaml:"vector_store"`
	Redis       RedisSettings       `yaml:"redis"`
	Sessions    SessionSettings     `yaml:"sessions"`
}

type IngestSettings struct {
	ChunkSize       int    `yaml:"chunk_size"`
	ChunkOverlap    int    `yaml:"chunk_overlap"`
	MaxIndexedPages int    `yaml:"max_indexed_pages"`
	BatchSize       int    `yaml:"embedding_batch_size"`
	MaxUploadBytes  int64  `yaml:"max_upload_bytes"`
	UploadDir       string `yaml:"upload_dir"`
}

type RetrievalSettings struct {
	TopK int `yaml:"top_k"`
}

type EmbeddingSettings struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"-"`
}

type LLMSettings struct {
	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	APIKey      string        `yaml:"-"`
}

type VectorStoreSettings struct {
	Backend      string `yaml:"backend"`
	QdrantHost   string `yaml:"qdrant_host"`
	QdrantPort   int    `yaml:"qdrant_port"`
	QdrantUseTLS bool   `yaml:"qdrant_use_tls"`
	QdrantAPIKey string `yaml:"-"`
}

type RedisSettings struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"-"`
	JobTTL   time.Duration `yaml:"job_ttl"`
}

type SessionSettings struct {
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

func Default() *Settings {
	return &Settings{
		ListenAddr: ServerListenAddr,
		LogLevel:   "debug",
		Prod:       IS_PROD,
		Ingest: IngestSettings{
			ChunkSize:       ChunkSize,
			ChunkOverlap:    ChunkOverlap,
			MaxIndexedPages: MaxIndexedPages,
			BatchSize:       EmbeddingBatchSize,
			MaxUploadBytes:  MaxUploadSize,
			UploadDir:       UploadDirName,
		},
		Retrieval: RetrievalSettings{TopK: RetrievalTopK},
		Embedding: EmbeddingSettings{
			Provider: EmbeddingProviderHuggingFace,
			Model:    HuggingFaceEmbeddingModel,
		},
		LLM: LLMSettings{
			Provider:    LLMProviderGroq,
			Model:       GroqModelName,
			BaseURL:     GroqBaseURL,
			Temperature: ModelTemperature,
			Timeout:     LLMConnectionTimeout,
		},
		VectorStore: VectorStoreSettings{
			Backend:      VectorBackendChromem,
			QdrantHost:   QdrantHost,
			QdrantPort:   QdrantGrpcPort,
			QdrantUseTLS: QdrantUseTLS,
		},
		Redis: RedisSettings{
			Addr:   RedisAddr,
			JobTTL: RedisJobStoreTTL,
		},
		Sessions: SessionSettings{
			IdleTimeout:   SessionIdleTimeout,
			SweepInterval: SessionSweepInterval,
		},
	}
}

// Load builds the settings. A missing file is not an error; path may be empty
// in which case CHATPDF_CONFIG and then DefaultConfigPath are tried.
func Load(path string) (*Settings, error) {
	s := Default()

	if path == "" {
		path = os.Getenv("CHATPDF_CONFIG")
	}
	if path == "" {
		path = DefaultConfigPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	s.applyEnv()
	s.applyProviderDefaults()

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) applyEnv() {
	s.AuthToken = os.Getenv("AUTH_TOKEN")
	if v, err := strconv.ParseBool(os.Getenv("NO_AUTH_BYPASS")); err == nil {
		s.NoAuthBypass = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		s.LogLevel = v
	}

	switch s.Embedding.Provider {
	case EmbeddingProviderGemini:
		s.Embedding.APIKey = os.Getenv("GOOGLE_API_KEY")
	default:
		s.Embedding.APIKey = os.Getenv("HUGGINGFACEHUB_API_TOKEN")
	}
	switch s.LLM.Provider {
	case LLMProviderGemini:
		s.LLM.APIKey = os.Getenv("GOOGLE_API_KEY")
	default:
		s.LLM.APIKey = os.Getenv("GROQ_API_KEY")
	}
	if v := os.Getenv("GROQ_MODEL"); v != "" {
		s.LLM.Model = v
	}

	if v := os.Getenv("VECTOR_BACKEND"); v != "" {
		s.VectorStore.Backend = v
	}
	if v := os.Getenv("QDRANT_HOST"); v != "" {
		s.VectorStore.QdrantHost = v
	}
	if port, err := strconv.Atoi(os.Getenv("QDRANT_PORT")); err == nil {
		s.VectorStore.QdrantPort = port
	}
	s.VectorStore.QdrantAPIKey = os.Getenv("QDRANT_API_KEY")

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		s.Redis.Addr = v
	}
	s.Redis.Password = os.Getenv("REDIS_PASSWORD")
}

// a config that only switches provider should not keep the other provider's model
func (s *Settings) applyProviderDefaults() {
	if s.Embedding.Provider == EmbeddingProviderGemini && s.Embedding.Model == HuggingFaceEmbeddingModel {
		s.Embedding.Model = GoogleEmbeddingModel
	}
	if s.LLM.Provider == LLMProviderGemini && s.LLM.Model == GroqModelName {
		s.LLM.Model = GeminiModelName
	}
}

func (s *Settings) Validate() error {
	var errs []error
	if s.Ingest.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("ingest.chunk_size must be positive, got %d", s.Ingest.ChunkSize))
	}
	if s.Ingest.ChunkOverlap < 0 || s.Ingest.ChunkOverlap >= s.Ingest.ChunkSize {
		errs = append(errs, fmt.Errorf("ingest.chunk_overlap must be in [0, chunk_size), got %d", s.Ingest.ChunkOverlap))
	}
	if s.Ingest.MaxIndexedPages <= 0 {
		errs = append(errs, fmt.Errorf("ingest.max_indexed_pages must be positive, got %d", s.Ingest.MaxIndexedPages))
	}
	if s.Ingest.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("ingest.embedding_batch_size must be positive, got %d", s.Ingest.BatchSize))
	}
	if s.Retrieval.TopK <= 0 {
		errs = append(errs, fmt.Errorf("retrieval.top_k must be positive, got %d", s.Retrieval.TopK))
	}
	switch s.Embedding.Provider {
	case EmbeddingProviderHuggingFace, EmbeddingProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("unknown embedding provider %q", s.Embedding.Provider))
	}
	switch s.LLM.Provider {
	case LLMProviderGroq, LLMProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("unknown llm provider %q", s.LLM.Provider))
	}
	switch s.VectorStore.Backend {
	case VectorBackendChromem, VectorBackendQdrant:
	default:
		errs = append(errs, fmt.Errorf("unknown vector store backend %q", s.VectorStore.Backend))
	}
	return errors.Join(errs...)
}
