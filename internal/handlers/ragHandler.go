package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/nvaruna/RagChatServer/internal/adapter"
	"github.com/nvaruna/RagChatServer/internal/api"
	"github.com/nvaruna/RagChatServer/internal/config"
	"github.com/nvaruna/RagChatServer/internal/rag"
	"github.com/nvaruna/RagChatServer/pkg/logger_i"
)

type RagHandler struct {
	service rag.Service
	logger  *logger_i.Logger
}

func NewRagHandler(service rag.Service) *RagHandler {
	return &RagHandler{
		service: service,
		logger:  logger_i.NewLogger("RAG Handler"),
	}
}

// UploadHandler godoc
// @Summary      Upload documents for a chat session
// @Description  Receives files via multipart/form-data, extracts and indexes their text, and (re)initializes the session. Re-uploading replaces the session's documents and clears its conversation history.
// @Tags         RAG
// @Accept       multipart/form-data
// @Produce      json
// @Param        session_id  formData  string  true  "Chat session identifier"
// @Param        files       formData  file    true  "PDF, DOCX or plain-text files"
// @Success      200  {object}  api.RagUploadResponse
// @Failure      400  {object}  api.ErrorResponse "Missing session id, no files, or no extractable content"
// @Failure      500  {object}  api.ErrorResponse
// @Router       /api/rag/upload [post]
func (h *RagHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		h.logger.Warn("Invalid Context by request ", "remote", r.RemoteAddr)
		return
	}
	log := h.logger.With("traceId", traceId(r.Context()))

	if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "File too large or bad request")
		return
	}

	sessionId := r.FormValue("session_id")
	if !isValidSessionId(sessionId) {
		WriteErrorResponse(w, http.StatusBadRequest, "session_id is required")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		WriteErrorResponse(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	targetDir, errString := getTargetDirectory()
	if errString != "" {
		log.Error("Couldn't get target directory :", "err", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, errString)
		return
	}

	paths := make([]string, 0, len(files))
	defer func() {
		for _, p := range paths {
			if err := os.Remove(p); err != nil {
				log.Warn("Couldn't remove temp upload", "path", p, "error", err)
			}
		}
	}()

	for _, fileHeader := range files {
		fileReader, err := fileHeader.Open()
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "Could not retrieve file")
			return
		}

		filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(fileHeader.Filename))
		tempFilePath := filepath.Join(targetDir, filename)
		destinationFileWriter, err := os.Create(tempFilePath)
		if err != nil {
			fileReader.Close()
			WriteErrorResponse(w, http.StatusInternalServerError, "Storage error")
			return
		}

		_, err = io.Copy(destinationFileWriter, fileReader)
		fileReader.Close()
		destinationFileWriter.Close()
		if err != nil {
			WriteErrorResponse(w, http.StatusInternalServerError, "Write error")
			return
		}
		paths = append(paths, tempFilePath)
	}

	if err := h.service.Ingest(r.Context(), sessionId, paths); err != nil {
		log.Error("Ingestion failed", "sessionId", sessionId, "error", err)
		if errors.Is(err, rag.ErrNoContent) {
			WriteErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteErrorResponse(w, http.StatusInternalServerError, "Document ingestion failed")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToRagUploadResponse(sessionId, len(files)))
}

// QueryHandler godoc
// @Summary      Ask a question about the session's documents
// @Description  Runs the history-aware retrieval pipeline for the session and returns the answer with the full conversation history.
// @Tags         RAG
// @Accept       json
// @Produce      json
// @Param        request  body      api.RagQueryRequest  true  "Session id and question"
// @Success      200      {object}  api.RagQueryResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse "Session has no ingested documents"
// @Failure      500      {object}  api.ErrorResponse
// @Router       /api/rag/query [post]
func (h *RagHandler) QueryHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		h.logger.Warn("Invalid Context by request ", "remote", r.RemoteAddr)
		return
	}
	log := h.logger.With("traceId", traceId(r.Context()))

	var requestData api.RagQueryRequest
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			log.Error("Couldn't close the query handler reader :", "error", err)
		}
	}(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil ||
		!isValidSessionId(requestData.SessionId) || requestData.Question == "" {
		log.Warn("Bad Query Request: ", "error:", err, "request data:", requestData)
		WriteErrorResponse(w, http.StatusBadRequest, "Bad Request")
		return
	}

	answer, history, err := h.service.Answer(r.Context(), requestData.SessionId, requestData.Question)
	if err != nil {
		if errors.Is(err, rag.ErrSessionNotFound) {
			WriteErrorResponse(w, http.StatusNotFound, err.Error())
			return
		}
		log.Error("Query failed", "sessionId", requestData.SessionId, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Query failed")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToRagQueryResponse(answer, history))
}
