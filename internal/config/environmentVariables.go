package config

import (
	"log/slog"
	"os"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"
	USER_ID_KEY    = "userId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 60 * time.Second //generation calls are slow, keep writes generous
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":8000"

	//CORS - adjust for production
	AllowedOrigin = "http://localhost:5173"

	//uploads
	MaxUploadSize = 32 << 20 //32mb

	//rag chunking
	ChunkSize      = 5000 //characters
	ChunkOverlap   = 500  //characters
	RetrievalTopK  = 4
	EmbedBatchSize = 100

	//rag session registry - least recently used session is reclaimed past this
	MaxRagSessions = 256

	//llm
	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	GoogleEmbeddingModel = "gemini-embedding-001"

	EmbeddingOutputDimensionality int32 = 1536

	ContextualizePrompt = "Given a chat history and the latest user question " +
		"which might reference context in the chat history, " +
		"formulate a standalone question which can be understood " +
		"without the chat history. Do NOT answer the question, " +
		"just reformulate it if needed and otherwise return it as is."

	AnswerPrompt = "You are an assistant for question-answering tasks. " +
		"Use the following pieces of retrieved context to answer " +
		"the question. If you don't know the answer, say that you " +
		"don't know. Use three sentences maximum and keep the " +
		"answer concise."

	SummaryPrompt = "Provide a comprehensive summary of the following content in 300 words."

	SearchAgentPrompt = "You are a research assistant. Answer the user's question using " +
		"the tool observations below. Mention which tool the information came from. " +
		"If the observations do not cover the question, say so."

	//search agent
	MaxObservationChars = 2000
	SearchResultCount   = 2

	//summarize
	SummarizeLoadTimeout = 20 * time.Second

	//auth
	AccessTokenExpiry = 7 * 24 * time.Hour

	//http client pooling
	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis has 16 DB we can use
	RedisChatStore = 0
	RedisUserStore = 1

	//chat documents are kept until deleted
	RedisChatStoreTTL time.Duration = 0

	RedisPassword    = ""
	defaultRedisAddr = "127.0.0.1:6379"

	//vector index backends
	VectorBackendChromem = "chromem"
	VectorBackendQdrant  = "qdrant"

	//qdrant (only used when VECTOR_BACKEND=qdrant)
	QdrantHost     = ""
	QdrantGrpcPort = 6334
	QdrantUseTLS   = false
	QdrantPoolSize = 1

	defaultSessionDataDir = "./session_data"
	defaultJWTSecret      = "change-this-in-production-09876543211234567890"
)

// GoogleAPIKey is shared by the embedding and the generation clients.
func GoogleAPIKey() string {
	return os.Getenv("GOOGLE_API_KEY")
}

// SessionDataDir is the root under which each RAG session persists its
// vector index (one subdirectory per session identifier).
func SessionDataDir() string {
	if dir := os.Getenv("SESSION_DATA_DIR"); dir != "" {
		return dir
	}
	return defaultSessionDataDir
}

func JWTSecret() []byte {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte(defaultJWTSecret)
}

func RedisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	return defaultRedisAddr
}

func VectorBackend() string {
	if b := os.Getenv("VECTOR_BACKEND"); b != "" {
		return b
	}
	return VectorBackendChromem
}
