package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nvaruna/RagChatServer/internal/api"
	"github.com/nvaruna/RagChatServer/internal/summarize"
	"github.com/nvaruna/RagChatServer/pkg/logger_i"
)

type SummarizeHandler struct {
	summarizer *summarize.Summarizer
	logger     *logger_i.Logger
}

func NewSummarizeHandler(summarizer *summarize.Summarizer) *SummarizeHandler {
	return &SummarizeHandler{
		summarizer: summarizer,
		logger:     logger_i.NewLogger("Summarize Handler"),
	}
}

// SummarizeHandler godoc
// @Summary      Summarize a web page or YouTube video
// @Tags         Summarize
// @Accept       json
// @Produce      json
// @Param        request  body      api.SummarizeRequest  true  "URL to summarize"
// @Success      200      {object}  api.SummarizeResponse
// @Failure      400      {object}  api.ErrorResponse "Missing, invalid or unreadable URL"
// @Failure      500      {object}  api.ErrorResponse
// @Router       /api/summarize [post]
func (h *SummarizeHandler) SummarizeHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	log := h.logger.With("traceId", traceId(r.Context()))

	var requestData api.SummarizeRequest
	defer closeBody(r.Body, log)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || requestData.URL == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "URL is required")
		return
	}

	summary, err := h.summarizer.Summarize(r.Context(), requestData.URL)
	if err != nil {
		if errors.Is(err, summarize.ErrInvalidURL) || errors.Is(err, summarize.ErrNoReadableContent) {
			WriteErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error("Summarization failed", "url", requestData.URL, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Summarization failed")
		return
	}

	writeJsonResponse(w, http.StatusOK, api.SummarizeResponse{URL: requestData.URL, Summary: summary})
}
