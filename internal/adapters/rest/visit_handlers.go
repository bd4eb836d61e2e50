package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Fvicente04/ca1-real-estate-app/internal/contextkeys"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/port"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/view"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/visit"
	"github.com/go-chi/chi/v5"
)

const sseKeepAliveInterval = 15 * time.Second

// VisitHandler обслуживает визиты: открытие, переходы, действия и поток состояния.
type VisitHandler struct {
	registry *visit.Registry
}

func NewVisitHandler(registry *visit.Registry) *VisitHandler {
	return &VisitHandler{registry: registry}
}

// CloseAll закрывает все визиты, а вместе с ними и открытые SSE-потоки.
func (h *VisitHandler) CloseAll() {
	h.registry.Shutdown()
}

// OpenVisit обрабатывает POST /api/v1/visits
func (h *VisitHandler) OpenVisit(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "OpenVisit"})

	var req OpenVisitRequest
	if err := decodeOptionalBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body for open visit", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Path == "" {
		req.Path = domain.PathHome
	}
	route, err := domain.ParseRoute(req.Path)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid path")
		return
	}

	v, err := h.registry.Open(route)
	if err != nil {
		logger.Error("Failed to open visit", err, nil)
		WriteJSONError(w, http.StatusServiceUnavailable, "Service is shutting down")
		return
	}

	logger.Info("Visit opened", port.Fields{"visit_id": v.ID})
	RespondWithJSON(w, http.StatusCreated, VisitResponse{VisitID: v.ID, State: v.Shell.State()})
}

// GetVisit обрабатывает GET /api/v1/visits/{visitID}
func (h *VisitHandler) GetVisit(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visitFromRequest(w, r)
	if !ok {
		return
	}
	RespondWithJSON(w, http.StatusOK, VisitResponse{VisitID: v.ID, State: v.Shell.State()})
}

// CloseVisit обрабатывает DELETE /api/v1/visits/{visitID}
func (h *VisitHandler) CloseVisit(w http.ResponseWriter, r *http.Request) {
	visitID := chi.URLParam(r, "visitID")
	if !h.registry.Close(visitID) {
		WriteJSONError(w, http.StatusNotFound, "Visit not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Navigate обрабатывает POST /api/v1/visits/{visitID}/navigate
func (h *VisitHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "Navigate"})

	v, ok := h.visitFromRequest(w, r)
	if !ok {
		return
	}

	var req NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		logger.Warn("Invalid navigate request", port.Fields{"visit_id": v.ID})
		WriteJSONError(w, http.StatusBadRequest, "Request body must contain a path")
		return
	}
	route, err := domain.ParseRoute(req.Path)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid path")
		return
	}

	v.Shell.Navigate(route)
	RespondWithJSON(w, http.StatusOK, VisitResponse{VisitID: v.ID, State: v.Shell.State()})
}

// HandleAction обрабатывает POST /api/v1/visits/{visitID}/actions/{action}
func (h *VisitHandler) HandleAction(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
		"handler": "HandleAction",
		"action":  action,
	})

	v, ok := h.visitFromRequest(w, r)
	if !ok {
		return
	}

	var req ActionRequest
	if err := decodeOptionalBody(r, &req); err != nil {
		logger.Warn("Failed to decode action body", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := v.Shell.Handle(r.Context(), view.Action{Name: action, Fields: req.Fields})
	if errors.Is(err, view.ErrUnsupportedAction) {
		WriteJSONError(w, http.StatusUnprocessableEntity, "Action is not supported by the current view")
		return
	}
	if err != nil {
		logger.Error("Action failed", err, port.Fields{"visit_id": v.ID})
		WriteJSONError(w, http.StatusInternalServerError, "Failed to handle action")
		return
	}

	RespondWithJSON(w, http.StatusAccepted, VisitResponse{VisitID: v.ID, State: v.Shell.State()})
}

// StreamEvents обрабатывает GET /api/v1/visits/{visitID}/events (SSE).
// Каждое событие state - полный снимок визита; медленный клиент получает только последний.
func (h *VisitHandler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "StreamEvents"})

	v, ok := h.visitFromRequest(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteJSONError(w, http.StatusInternalServerError, "Streaming is not supported")
		return
	}

	release := h.registry.Hold(v)
	defer release()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	sub := v.Shell.Subscribe()
	defer sub.Close()

	ticker := time.NewTicker(sseKeepAliveInterval)
	defer ticker.Stop()

	streamLogger := logger.WithFields(port.Fields{"visit_id": v.ID})
	streamLogger.Info("SSE client connected", nil)

	for {
		select {
		case st, ok := <-sub.C():
			if !ok {
				// визит закрыт
				fmt.Fprint(w, "event: closed\ndata: {}\n\n")
				flusher.Flush()
				return
			}
			data, err := json.Marshal(st)
			if err != nil {
				streamLogger.Error("Failed to marshal visit state", err, nil)
				return
			}
			if _, err := fmt.Fprintf(w, "id: %d\nevent: state\ndata: %s\n\n", st.Version, data); err != nil {
				streamLogger.Warn("Error writing to client, closing SSE connection", port.Fields{"error": err.Error()})
				return
			}
			flusher.Flush()

		case <-ticker.C:
			// строки с двоеточием - комментарии SSE, клиент их игнорирует
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			streamLogger.Info("SSE client disconnected", nil)
			return
		}
	}
}

func (h *VisitHandler) visitFromRequest(w http.ResponseWriter, r *http.Request) (*visit.Visit, bool) {
	v, ok := h.registry.Get(chi.URLParam(r, "visitID"))
	if !ok {
		WriteJSONError(w, http.StatusNotFound, "Visit not found")
		return nil, false
	}
	return v, true
}

// decodeOptionalBody допускает пустое тело.
func decodeOptionalBody(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
