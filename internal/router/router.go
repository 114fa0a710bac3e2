package router

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Totarae/shortr/internal/handlers"
	"github.com/Totarae/shortr/internal/middleware"
)

// NewRouter создаёт и настраивает маршрутизатор. bodyLimit ограничивает размер тела запроса в байтах.
func NewRouter(handler *handlers.Handler, logger *zap.Logger, bodyLimit int64) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.LoggingMiddleware(logger)) // Подключаем логирование
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS)
	r.Use(middleware.GzipMiddleware) // Gzip-сжатие
	r.Use(chimw.RequestSize(bodyLimit))

	r.Get("/ping", handler.PingHandler)

	r.Route("/api/links", func(r chi.Router) {
		r.Get("/", handler.ListLinks)
		r.Post("/", handler.CreateLink)
		r.Post("/bulk", handler.BulkCreate)
		r.Get("/{alias}", handler.GetLink)
		r.Put("/{alias}", handler.UpdateLink)
		r.Delete("/{alias}", handler.DeleteLink)
	})

	// Маршруты первой версии API
	r.Get("/", handler.ListLinks)
	r.Post("/", handler.CreateLink)
	r.Put("/", handler.UpdateLinkLegacy)
	r.Delete("/{alias}", handler.DeleteLink)

	r.Get("/{alias}", handler.Redirect)
	return r
}
