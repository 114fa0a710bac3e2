// Package handlers содержит HTTP-обработчики API алиасов.
package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Totarae/shortr/internal/model"
	"github.com/Totarae/shortr/internal/service"
)

// Handler обслуживает HTTP-запросы поверх AliasService.
type Handler struct {
	Service *service.AliasService
	Logger  *zap.Logger
}

// NewHandler создаёт обработчик.
func NewHandler(svc *service.AliasService, logger *zap.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  logger,
	}
}

// CreateLink создаёт алиас из тела {"alias","url"}. Отвечает 201 и созданной записью.
func (h *Handler) CreateLink(res http.ResponseWriter, req *http.Request) {
	var body model.LinkRequest
	if !h.decode(res, req, &body) {
		return
	}

	link, err := h.Service.Create(req.Context(), body.Alias, body.URL)
	if err != nil {
		h.writeError(res, err)
		return
	}
	h.writeJSON(res, http.StatusCreated, link)
}

// ListLinks возвращает все записи.
func (h *Handler) ListLinks(res http.ResponseWriter, req *http.Request) {
	links, err := h.Service.GetAll(req.Context())
	if err != nil {
		h.writeError(res, err)
		return
	}
	h.writeJSON(res, http.StatusOK, links)
}

// GetLink возвращает одну запись без изменения счётчика.
func (h *Handler) GetLink(res http.ResponseWriter, req *http.Request) {
	link, err := h.Service.Get(req.Context(), chi.URLParam(req, "alias"))
	if err != nil {
		h.writeError(res, err)
		return
	}
	h.writeJSON(res, http.StatusOK, link)
}

// UpdateLink заменяет целевой адрес алиаса из пути и обнуляет счётчик.
func (h *Handler) UpdateLink(res http.ResponseWriter, req *http.Request) {
	var body model.UpdateRequest
	if !h.decode(res, req, &body) {
		return
	}
	h.update(res, req, chi.URLParam(req, "alias"), body.URL)
}

// UpdateLinkLegacy то же, что UpdateLink, но алиас передаётся в теле.
func (h *Handler) UpdateLinkLegacy(res http.ResponseWriter, req *http.Request) {
	var body model.LinkRequest
	if !h.decode(res, req, &body) {
		return
	}
	h.update(res, req, body.Alias, body.URL)
}

func (h *Handler) update(res http.ResponseWriter, req *http.Request, alias, target string) {
	link, err := h.Service.Update(req.Context(), alias, target)
	if err != nil {
		h.writeError(res, err)
		return
	}
	h.writeJSON(res, http.StatusOK, link)
}

// DeleteLink удаляет алиас.
func (h *Handler) DeleteLink(res http.ResponseWriter, req *http.Request) {
	if err := h.Service.Delete(req.Context(), chi.URLParam(req, "alias")); err != nil {
		h.writeError(res, err)
		return
	}
	h.writeJSON(res, http.StatusOK, model.MessageResponse{Message: "Alias deleted"})
}

// BulkCreate создаёт пакет алиасов. Ошибки отдельных элементов не влияют
// на код ответа: он 200, если тело запроса корректно.
func (h *Handler) BulkCreate(res http.ResponseWriter, req *http.Request) {
	var body model.BulkRequest
	if !h.decode(res, req, &body) {
		return
	}
	if body.Links == nil {
		h.writeJSON(res, http.StatusBadRequest, model.ErrorResponse{Error: "links array required"})
		return
	}

	h.writeJSON(res, http.StatusOK, h.Service.BulkCreate(req.Context(), body.Links))
}

// Redirect разрешает алиас, увеличивает счётчик и отвечает 302 на целевой адрес.
func (h *Handler) Redirect(res http.ResponseWriter, req *http.Request) {
	resolution, err := h.Service.Resolve(req.Context(), chi.URLParam(req, "alias"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			http.Error(res, "Alias not found", http.StatusNotFound)
			return
		}
		h.writeError(res, err)
		return
	}

	res.Header().Set("Location", resolution.Target)
	res.WriteHeader(http.StatusFound)
}

// PingHandler проверяет доступность хранилища.
func (h *Handler) PingHandler(res http.ResponseWriter, req *http.Request) {
	if err := h.Service.Ping(req.Context()); err != nil {
		h.Logger.Error("Storage ping failed", zap.Error(err))
		http.Error(res, "Storage unavailable", http.StatusServiceUnavailable)
		return
	}
	res.Header().Set("Content-Type", "text/plain")
	res.WriteHeader(http.StatusOK)
	_, _ = res.Write([]byte("OK"))
}
