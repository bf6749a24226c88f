package handlers

import (
	"net/http"

	"github.com/issafronov/redirectmap/internal/middleware/logger"
	"go.uber.org/zap"
)

// Ping проверяет доступность хранилища
func (h *Handler) Ping(res http.ResponseWriter, req *http.Request) {
	if err := h.service.Ping(req.Context()); err != nil {
		logger.Log.Warn("ping failed", zap.Error(err))
		http.Error(res, err.Error(), http.StatusServiceUnavailable)
		return
	}
	res.WriteHeader(http.StatusOK)
}
