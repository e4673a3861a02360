package v1

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ragline/ragline"
	"github.com/ragline/ragline/infrastructure/api/middleware"
	"github.com/ragline/ragline/infrastructure/api/v1/dto"
)

// ModelsRouter handles model API endpoints.
type ModelsRouter struct {
	client *ragline.Client
	logger *slog.Logger
}

// NewModelsRouter creates a new ModelsRouter.
func NewModelsRouter(client *ragline.Client) *ModelsRouter {
	return &ModelsRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for model endpoints.
func (r *ModelsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)

	return router
}

// List handles GET /api/v1/models.
func (r *ModelsRouter) List(w http.ResponseWriter, req *http.Request) {
	infos, err := r.client.Models.List()
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	models := make([]dto.ModelResponse, len(infos))
	for i, m := range infos {
		models[i] = dto.ModelResponse{
			Key:       m.Key(),
			FileName:  m.FileName(),
			SizeBytes: m.SizeBytes(),
			Loaded:    m.Loaded(),
		}
	}

	middleware.WriteJSON(w, http.StatusOK, dto.ModelListResponse{Models: models})
}
