package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/nvaruna/RagChatServer/internal/adapter"
	"github.com/nvaruna/RagChatServer/internal/api"
	"github.com/nvaruna/RagChatServer/internal/search"
	"github.com/nvaruna/RagChatServer/pkg/logger_i"
)

type SearchHandler struct {
	agent  *search.Agent
	logger *logger_i.Logger
}

func NewSearchHandler(agent *search.Agent) *SearchHandler {
	return &SearchHandler{
		agent:  agent,
		logger: logger_i.NewLogger("Search Handler"),
	}
}

// SearchChatHandler godoc
// @Summary      Answer a question using web search tools
// @Description  Accepts the chat transcript, runs the research tools on the latest user message, and returns the composed answer with intermediate steps.
// @Tags         Search
// @Accept       json
// @Produce      json
// @Param        request  body      api.SearchRequest  true  "Chat messages"
// @Success      200      {object}  api.SearchResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /api/search-chat [post]
func (h *SearchHandler) SearchChatHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	log := h.logger.With("traceId", traceId(r.Context()))

	var requestData api.SearchRequest
	defer closeBody(r.Body, log)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || len(requestData.Messages) == 0 {
		WriteErrorResponse(w, http.StatusBadRequest, "messages are required")
		return
	}

	messages := make([]search.Message, 0, len(requestData.Messages))
	for _, m := range requestData.Messages {
		messages = append(messages, search.Message{Role: m.Role, Content: m.Content})
	}

	result, err := h.agent.Run(r.Context(), messages)
	if err != nil {
		log.Error("Search agent failed", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToSearchResponse(result))
}
