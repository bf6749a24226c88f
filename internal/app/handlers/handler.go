package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/issafronov/redirectmap/internal/app/config"
	"github.com/issafronov/redirectmap/internal/app/export"
	"github.com/issafronov/redirectmap/internal/app/models"
	"github.com/issafronov/redirectmap/internal/app/service"
	"github.com/issafronov/redirectmap/internal/middleware/auth"
	"github.com/issafronov/redirectmap/internal/middleware/logger"
	"go.uber.org/zap"
)

// defaultMaxRequestBody используется, если лимит тела запроса не задан в конфигурации
const defaultMaxRequestBody = 20 << 20

// Handler обрабатывает HTTP-запросы к сервису карт редиректов
type Handler struct {
	config   *config.Config
	service  service.Service
	validate *validator.Validate
}

// NewHandler создаёт обработчик
func NewHandler(cfg *config.Config, svc service.Service) (*Handler, error) {
	if svc == nil {
		return nil, errors.New("service is required")
	}
	return &Handler{
		config:   cfg,
		service:  svc,
		validate: validator.New(),
	}, nil
}

func (h *Handler) maxRequestBody() int64 {
	if h.config == nil || h.config.MaxRequestBodyBytes <= 0 {
		return defaultMaxRequestBody
	}
	return h.config.MaxRequestBodyBytes
}

type errorResponse struct {
	Error string `json:"error"`
}

// BuildMappingHandle строит карту редиректов по двум инвентарям
func (h *Handler) BuildMappingHandle(res http.ResponseWriter, req *http.Request) {
	var request models.MappingRequest
	if err := json.NewDecoder(http.MaxBytesReader(res, req.Body, h.maxRequestBody())).Decode(&request); err != nil {
		logger.Log.Debug("cannot decode request JSON body", zap.Error(err))
		writeJSON(res, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.validate.Struct(request); err != nil {
		logger.Log.Debug("invalid mapping request", zap.Error(err))
		writeJSON(res, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	userID, _ := auth.UserID(req.Context())
	result, err := h.service.BuildMapping(req.Context(), request, userID)
	if err != nil {
		if errors.Is(err, service.ErrNoInput) {
			writeJSON(res, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		logger.Log.Error("mapping run failed", zap.String("user", userID), zap.Error(err))
		failed := models.EmptyResult(models.RunMeta{})
		failed.Error = err.Error()
		writeJSON(res, http.StatusInternalServerError, failed)
		return
	}

	writeJSON(res, http.StatusOK, result)
}

// GetRunHandle возвращает сохранённый отчёт; ?format=csv отдаёт пары и правила в CSV
func (h *Handler) GetRunHandle(res http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")
	result, err := h.service.GetRun(req.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeJSON(res, http.StatusNotFound, errorResponse{Error: err.Error()})
			return
		}
		logger.Log.Error("failed to get run", zap.String("run", id), zap.Error(err))
		http.Error(res, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if req.URL.Query().Get("format") == "csv" {
		res.Header().Set("Content-Type", export.ContentType)
		res.Header().Set("Content-Disposition", `attachment; filename="redirects-`+id+`.csv"`)
		res.WriteHeader(http.StatusOK)
		if err := export.WriteCSV(res, result); err != nil {
			logger.Log.Error("failed to write csv", zap.String("run", id), zap.Error(err))
		}
		return
	}
	writeJSON(res, http.StatusOK, result)
}

// GetUserRunsHandle возвращает запуски текущего пользователя
func (h *Handler) GetUserRunsHandle(res http.ResponseWriter, req *http.Request) {
	userID, ok := auth.UserID(req.Context())
	if !ok {
		http.Error(res, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	runs, err := h.service.GetUserRuns(req.Context(), userID)
	if err != nil {
		logger.Log.Error("failed to get user runs", zap.String("user", userID), zap.Error(err))
		http.Error(res, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if len(runs) == 0 {
		res.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(res, http.StatusOK, runs)
}

// StatsHandle возвращает количество запусков и пользователей
func (h *Handler) StatsHandle(res http.ResponseWriter, req *http.Request) {
	runs, users, err := h.service.GetStats(req.Context())
	if err != nil {
		logger.Log.Error("failed to get stats", zap.Error(err))
		http.Error(res, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeJSON(res, http.StatusOK, models.StatsResponse{Runs: runs, Users: users})
}

func writeJSON(res http.ResponseWriter, status int, v any) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	if err := json.NewEncoder(res).Encode(v); err != nil {
		logger.Log.Error("error encoding response", zap.Error(err))
	}
}
