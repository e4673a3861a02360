package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ragline/ragline"
	"github.com/ragline/ragline/application/service"
	"github.com/ragline/ragline/infrastructure/api/middleware"
	"github.com/ragline/ragline/infrastructure/api/v1/dto"
)

// ChatRouter handles chat API endpoints.
type ChatRouter struct {
	client *ragline.Client
	logger *slog.Logger
}

// NewChatRouter creates a new ChatRouter.
func NewChatRouter(client *ragline.Client) *ChatRouter {
	return &ChatRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for chat endpoints.
func (r *ChatRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", r.Ask)

	return router
}

// Ask handles POST /api/v1/chat.
func (r *ChatRouter) Ask(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body dto.ChatRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "invalid request body", err), r.logger)
		return
	}
	if body.Question == "" {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "question is required", nil), r.logger)
		return
	}

	result, err := r.client.Chat.Ask(ctx, service.NewChatRequest(
		body.Question, body.ModelID, body.ModelName, body.DocumentIDs, body.TopK,
	))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, buildChatResponse(result))
}

func buildChatResponse(result service.ChatResult) dto.ChatResponse {
	sources := make([]dto.SourceResponse, len(result.Sources()))
	for i, s := range result.Sources() {
		sources[i] = dto.SourceResponse{
			ChunkID:    s.ChunkID(),
			DocumentID: s.DocumentID(),
			Page:       s.Page(),
			Title:      s.Title(),
			Excerpt:    s.Excerpt(),
			Score:      s.Score(),
		}
	}

	return dto.ChatResponse{
		Answer:    result.Answer(),
		Sources:   sources,
		ModelFile: result.ModelFile(),
		Strategy:  string(result.Strategy()),
		CacheHit:  result.CacheHit(),
	}
}
