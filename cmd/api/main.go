// @title           RAG Chat API
// @version         1.0
// @description     Chat backend with per-session document RAG, web search and URL summarization
// @termsOfService  http://swagger.io/terms/

// @contact.name    me lol
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/nvaruna/RagChatServer/internal/config"
	"github.com/nvaruna/RagChatServer/internal/data/redisStore"
	"github.com/nvaruna/RagChatServer/internal/data/store"
	"github.com/nvaruna/RagChatServer/internal/domain/chatModel"
	"github.com/nvaruna/RagChatServer/internal/handlers"
	"github.com/nvaruna/RagChatServer/internal/rag"
	"github.com/nvaruna/RagChatServer/internal/rag/embedding/googleEmbedding"
	"github.com/nvaruna/RagChatServer/internal/rag/llm/gemini"
	"github.com/nvaruna/RagChatServer/internal/rag/vectorDB"
	"github.com/nvaruna/RagChatServer/internal/rag/vectorDB/chromemDB"
	"github.com/nvaruna/RagChatServer/internal/rag/vectorDB/qdrantDB"
	"github.com/nvaruna/RagChatServer/internal/search"
	"github.com/nvaruna/RagChatServer/internal/server"
	"github.com/nvaruna/RagChatServer/internal/summarize"
	"github.com/nvaruna/RagChatServer/pkg/logger_i"
)

var listenAddr string

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//persistence, falls back to in-process maps when Redis is offline
	var sessionStore chatModel.SessionStore
	var messageStore chatModel.MessageStore
	var userStore chatModel.UserStore
	if redisStore.GetRedisStore(serviceContext, config.RedisChatStore) != nil {
		sessionStore = store.GetRedisSessionStore(serviceContext)
		messageStore = store.GetRedisMessageStore(serviceContext)
		userStore = store.GetRedisUserStore(serviceContext)
	} else {
		logger.Error("Redis stores are offline, using in-memory stores")
		sessionStore = store.InitInMemorySessionStore()
		messageStore = store.InitInMemoryMessageStore()
		userStore = store.InitInMemoryUserStore()
	}

	embeddingService := googleEmbedding.GetGoogleEmbeddingClient(serviceContext, config.GoogleEmbeddingModel, config.GoogleAPIKey())
	llmProvider := gemini.GetGeminiClient(serviceContext, config.GeminiModelName, config.GoogleAPIKey())

	var vectorProvider vectorDB.Provider
	if config.VectorBackend() == config.VectorBackendQdrant {
		vectorProvider = qdrantDB.GetQdrantProvider(serviceContext)
	} else {
		vectorProvider = chromemDB.NewProvider(config.SessionDataDir())
	}

	if vectorProvider == nil || embeddingService == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "VectorDB", vectorProvider != nil, "EmbeddingService", embeddingService != nil, "LLMProvider", llmProvider != nil)
		return
	}

	registry := rag.NewRegistry(config.MaxRagSessions)
	ragService := rag.NewService(registry, vectorProvider, llmProvider, embeddingService)

	routeHandlers := server.Handlers{
		Rag:       handlers.NewRagHandler(ragService),
		Auth:      handlers.NewAuthHandler(userStore),
		Chat:      handlers.NewChatHandler(sessionStore, messageStore),
		Search:    handlers.NewSearchHandler(search.NewAgent(llmProvider)),
		Summarize: handlers.NewSummarizeHandler(summarize.NewSummarizer(llmProvider)),
	}

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr, routeHandlers)

	<-stopExecution
	logger.Info("Server stopped")
}
