package handler

import (
	"net/http"

	"github.com/gabriel-adutra/deploy-of-an-API-for-text-generation-from-images-using-an-LLM-and-Docker/internal/config"
	"github.com/gabriel-adutra/deploy-of-an-API-for-text-generation-from-images-using-an-LLM-and-Docker/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/gabriel-adutra/deploy-of-an-API-for-text-generation-from-images-using-an-LLM-and-Docker/docs"
)

func NewRouter(h *VQAHandler, cfg config.ServerConfig) http.Handler {
	r := chi.NewRouter()
	r.Use([]func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Throttle(cfg.ThrottleLimit),
		middleware.Timeout(cfg.Timeout),
		metrics.Middleware,
	}...)

	r.Get("/", h.Info)
	r.Get("/healthz", Health)
	r.Post("/vqa", h.Answer)
	r.Post("/vqa/stream", h.AnswerStream)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Handle("/metrics", promhttp.Handler())

	return r
}
