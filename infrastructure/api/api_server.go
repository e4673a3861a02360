package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ragline/ragline"
	apimiddleware "github.com/ragline/ragline/infrastructure/api/middleware"
	v1 "github.com/ragline/ragline/infrastructure/api/v1"
)

// chatTimeout bounds a single chat request. It is generous because a cold
// request may have to start a model process first.
const chatTimeout = 5 * time.Minute

// APIServer provides an HTTP API backed by a ragline Client.
type APIServer struct {
	client       *ragline.Client
	apiKeys      []string
	server       *Server
	router       chi.Router
	routerCalled bool
	logger       *slog.Logger
}

// NewAPIServer creates a new APIServer wired to the given ragline Client.
// apiKeys configures write-protection: mutating endpoints (POST, DELETE) on
// /api/v1/documents require a valid key. Chat, model listing, and all
// read-only endpoints remain open.
func NewAPIServer(client *ragline.Client, apiKeys []string) *APIServer {
	return &APIServer{
		client:  client,
		apiKeys: apiKeys,
		logger:  client.Logger(),
	}
}

// Router returns the chi router for customization before starting.
// Call this first, add custom middleware with router.Use(), then call MountRoutes().
// If not called, ListenAndServe creates a default router with all standard routes.
func (a *APIServer) Router() chi.Router {
	if a.router != nil {
		return a.router
	}

	a.router = chi.NewRouter()
	a.routerCalled = true
	return a.router
}

// MountRoutes wires up all v1 API routes on the router.
// Call this after adding any custom middleware via Router().Use().
func (a *APIServer) MountRoutes() {
	if a.router == nil {
		a.Router()
	}
	a.mountRoutes(a.router)
}

// mountRoutes wires up all v1 API routes on the given router.
func (a *APIServer) mountRoutes(router chi.Router) {
	c := a.client

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: c.Config().AllowedOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-API-KEY"},
	}))
	router.Use(apimiddleware.Logging(a.logger))

	router.Get("/healthz", a.health)

	documentsRouter := v1.NewDocumentsRouter(c)
	chatRouter := v1.NewChatRouter(c)
	modelsRouter := v1.NewModelsRouter(c)

	router.Route("/api/v1", func(r chi.Router) {
		// Chat gets its own timeout budget, everything else is quick.
		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(chatTimeout))
			r.Mount("/chat", chatRouter.Routes())
		})

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(60 * time.Second))
			r.Mount("/models", modelsRouter.Routes())

			// Document uploads and deletes require a valid API key when
			// keys are configured.
			r.Group(func(r chi.Router) {
				r.Use(apimiddleware.WriteProtect(apimiddleware.NewAuthConfigWithKeys(a.apiKeys)))
				r.Mount("/documents", documentsRouter.Routes())
			})
		})
	})
}

func (a *APIServer) health(w http.ResponseWriter, _ *http.Request) {
	apimiddleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListenAndServe starts the HTTP server on the given address.
func (a *APIServer) ListenAndServe(addr string) error {
	server := NewServer(addr, a.logger)
	a.server = &server

	if a.routerCalled && a.router != nil {
		server.Router().Mount("/", a.router)
	} else {
		a.mountRoutes(server.Router())
	}

	return server.Start()
}

// Shutdown gracefully shuts down the server.
func (a *APIServer) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// Handler returns the router as an http.Handler for use with custom servers.
func (a *APIServer) Handler() http.Handler {
	if a.router == nil {
		a.Router()
		a.MountRoutes()
	}
	return a.router
}
