// Package orders exposes the order intake webhook.
package orders

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cheetahx/dispatch/core/logger"
	"github.com/cheetahx/dispatch/core/model"
)

// OrderProcessor runs the dispatch pipeline for one order.
type OrderProcessor interface {
	ProcessOrder(ctx context.Context, order model.Order) (model.DispatchResult, error)
}

// NewIntakeHandler returns an HTTP handler accepting delivery orders via
// POST /api/orders. Requests must include an Authorization header with
// "Bearer <token>" when token is non-empty. A malformed or invalid order
// yields 400; every processed order yields its DispatchResult.
func NewIntakeHandler(proc OrderProcessor, token string, log logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		var order model.Order
		if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
			http.Error(w, "invalid order payload: "+err.Error(), http.StatusBadRequest)
			return
		}
		result, err := proc.ProcessOrder(r.Context(), order)
		if err != nil {
			// ProcessOrder only errors on validation; system failures come
			// back as a failed result.
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if log != nil {
			log.Infof("order %s processed via webhook: %s", order.ID, result.Status)
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
