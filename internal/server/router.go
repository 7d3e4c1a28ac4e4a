package server

import (
	"net/http"

	_ "github.com/akolanti/ChatPDF/cmd/api/docs"
	"github.com/akolanti/ChatPDF/internal/handlers"
	"github.com/akolanti/ChatPDF/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter registers every route. mcpHandler may be nil, /mcp is then not served.
func NewRouter(mcpHandler http.Handler) *chi.Mux {
	r := chi.NewRouter()
	initSwagger(r)
	//register prometheus
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", handlers.GetHandler)

	r.Get("/models", middleware.GetModelsHandler)
	r.Get("/session", middleware.GetSessionHandler)
	r.Put("/session/model", middleware.PutSessionModelHandler)
	r.Get("/session/pages", middleware.GetSessionPagesHandler)
	r.Post("/ingest", middleware.PostIngestHandler)
	r.Post("/chat", middleware.ChatHandler)
	r.Get("/status/{id}", middleware.GetStatusHandler)

	if mcpHandler != nil {
		r.Handle("/mcp", middleware.WrapWithoutSession(mcpHandler))
	}
	return r
}

func initSwagger(r *chi.Mux) {
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)
}
