package orders

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/urbanride/dispatch/core/dispatch"
	"github.com/urbanride/dispatch/core/model"
	"github.com/urbanride/dispatch/core/monitoring"
	"github.com/urbanride/dispatch/core/pricing"
	"github.com/urbanride/dispatch/core/queue"
	"github.com/urbanride/dispatch/infra/logger"
)

// Engine is the coordinator surface the HTTP layer wraps.
type Engine interface {
	Submit(req model.OrderRequest) (model.PriceBreakdown, error)
	Dispatch() (model.DispatchedOrder, bool)
	Cancel(orderID string) error
	Snapshot() queue.Snapshot
	ReplaceRules(rules []model.PricingRule) error
	ListRules() []model.PricingRule
}

// Handler exposes the engine operations over HTTP.
type Handler struct {
	engine Engine
	log    logger.Logger
	mux    *http.ServeMux
}

// NewHandler builds the route table for the order, dispatch, queue and rule
// endpoints.
func NewHandler(engine Engine) *Handler {
	h := &Handler{engine: engine, log: logger.New("api")}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/orders", h.submit)
	mux.HandleFunc("DELETE /api/orders/{id}", h.cancel)
	mux.HandleFunc("POST /api/dispatch", h.dispatch)
	mux.HandleFunc("GET /api/queues", h.queues)
	mux.HandleFunc("GET /api/rules", h.listRules)
	mux.HandleFunc("PUT /api/rules", h.replaceRules)
	h.mux = mux
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

type submitResponse struct {
	OrderID   string               `json:"order_id"`
	Breakdown model.PriceBreakdown `json:"price_breakdown"`
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req model.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.OrderID == "" {
		req.OrderID = uuid.NewString()
	}
	bd, err := h.engine.Submit(req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, submitResponse{OrderID: req.OrderID, Breakdown: bd})
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Cancel(r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) dispatch(w http.ResponseWriter, _ *http.Request) {
	order, ok := h.engine.Dispatch()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type queuesResponse struct {
	queue.Snapshot
	Stats monitoring.Summary `json:"stats"`
}

func (h *Handler) queues(w http.ResponseWriter, _ *http.Request) {
	snap := h.engine.Snapshot()
	writeJSON(w, http.StatusOK, queuesResponse{Snapshot: snap, Stats: monitoring.Summarize(snap)})
}

func (h *Handler) listRules(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.ListRules())
}

func (h *Handler) replaceRules(w http.ResponseWriter, r *http.Request) {
	var rules []model.PricingRule
	if err := json.NewDecoder(r.Body).Decode(&rules); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := h.engine.ReplaceRules(rules); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"rules": len(rules)})
}

// writeError maps engine errors onto HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var (
		invalid   *pricing.InvalidRequestError
		config    *pricing.ConfigurationError
		classify  *dispatch.ClassificationError
		validate  *pricing.ValidationError
		notFound  *queue.NotFoundError
		duplicate *queue.DuplicateError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &invalid), errors.As(err, &classify), errors.As(err, &validate):
		status = http.StatusBadRequest
	case errors.As(err, &config):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &duplicate):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		h.log.Errorf("request failed: %v", err)
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
