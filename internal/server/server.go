package server

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/nvaruna/RagChatServer/internal/adapter/utils"
	"github.com/nvaruna/RagChatServer/internal/config"
	"github.com/nvaruna/RagChatServer/internal/handlers"
	"github.com/nvaruna/RagChatServer/internal/middleware"
	"github.com/nvaruna/RagChatServer/pkg/logger_i"
)

var (
	server  *http.Server
	_logger = logger_i.NewLogger("Server")
)

// Handlers groups everything the router needs.
type Handlers struct {
	Rag       *handlers.RagHandler
	Auth      *handlers.AuthHandler
	Chat      *handlers.ChatHandler
	Search    *handlers.SearchHandler
	Summarize *handlers.SummarizeHandler
}

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	CloseServices    context.CancelFunc
}

func CreateServer(listenAddr string, h Handlers) {
	r := utils.GetRouter()

	r.Router.Get("/health", middleware.Wrap(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r.Router.Post("/api/rag/upload", middleware.Wrap(h.Rag.UploadHandler))
	r.Router.Post("/api/rag/query", middleware.Wrap(h.Rag.QueryHandler))

	r.Router.Post("/api/search-chat", middleware.Wrap(h.Search.SearchChatHandler))
	r.Router.Post("/api/summarize", middleware.Wrap(h.Summarize.SummarizeHandler))

	r.Router.Post("/api/auth/register", middleware.Wrap(h.Auth.RegisterHandler))
	r.Router.Post("/api/auth/login", middleware.Wrap(h.Auth.LoginHandler))

	r.Router.Get("/api/sessions", middleware.Wrap(h.Chat.ListSessionsHandler))
	r.Router.Post("/api/sessions", middleware.Wrap(h.Chat.CreateSessionHandler))
	r.Router.Put("/api/sessions/{id}", middleware.Wrap(h.Chat.RenameSessionHandler))
	r.Router.Delete("/api/sessions/{id}", middleware.Wrap(h.Chat.DeleteSessionHandler))
	r.Router.Get("/api/sessions/{id}/messages", middleware.Wrap(h.Chat.GetMessagesHandler))
	r.Router.Post("/api/messages", middleware.Wrap(h.Chat.SaveMessageHandler))
	r.Router.Delete("/api/messages/{id}", middleware.Wrap(h.Chat.ClearMessagesHandler))

	server = &http.Server{
		Addr:         listenAddr,
		Handler:      r.Router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	_logger.Info("Server is listening at", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error :", err.Error(), "addr", listenAddr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	_logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		server.SetKeepAlivesEnabled(false)

		if err := server.Shutdown(ctx); err != nil {
			_logger.Error("Could not shutdown gracefully: %s", err)
		}

		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Gracefully shut down")
	case <-ctx.Done():
		_logger.Info("Force Shut down")
		os.Exit(1)
	}
}
