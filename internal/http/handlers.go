package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"transaksi/internal/core"
	applog "transaksi/internal/log"
	"transaksi/internal/remote"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	})
}

// handleReady verifies the store answers a list call.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.storeContext(r.Context())
	defer cancel()

	status, code, check := "ready", http.StatusOK, "ok"
	if _, err := s.store.List(ctx); err != nil {
		status, code, check = "not_ready", http.StatusServiceUnavailable, fmt.Sprintf("failed: %v", err)
	}
	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    map[string]string{"store": check},
	})
}

// handleList serves GET /transaksi, optionally narrowed by ?month=&year=.
// Records come back most recently updated first.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	p, filtered, err := parsePeriod(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := s.storeContext(r.Context())
	defer cancel()

	var txs []core.Transaction
	switch {
	case filtered && s.periods != nil:
		txs, err = s.periods.ListByPeriod(ctx, p)
	default:
		txs, err = s.store.List(ctx)
		if err == nil && filtered {
			txs = core.FilterPeriod(txs, p)
		}
	}
	if err != nil {
		applog.FromContext(r.Context()).LogError(r.Context(), "Failed to list transactions", err, applog.OpList, nil)
		writeError(w, err)
		return
	}
	core.SortByRecency(txs)
	writeList(w, txs)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	t, err := parseTransaction(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	if t.ID == "" {
		writeError(w, fmt.Errorf("%w: missing id", errBadPayload))
		return
	}

	ctx, cancel := s.storeContext(r.Context())
	defer cancel()

	id, err := s.store.Create(ctx, t)
	if err != nil {
		s.logFailure(r, applog.OpCreate, t.ID, err)
		writeError(w, err)
		return
	}
	t.ID = id

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transaction created",
		applog.NewFields().
			WithOperation(applog.OpCreate).
			WithTransaction(id, t.Kind.String(), t.Amount.String()).
			ToSlice()...)
	writeJSON(w, http.StatusOK, itemResponse{Data: remote.FromTransaction(t)})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	t, err := parseTransaction(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	if t.ID != "" && t.ID != id {
		writeError(w, fmt.Errorf("%w: body id %q does not match path", errBadPayload, t.ID))
		return
	}
	t.ID = id

	ctx, cancel := s.storeContext(r.Context())
	defer cancel()

	if err := s.store.Update(ctx, id, t); err != nil {
		s.logFailure(r, applog.OpUpdate, id, err)
		writeError(w, err)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transaction updated",
		applog.NewFields().
			WithOperation(applog.OpUpdate).
			WithTransaction(id, t.Kind.String(), t.Amount.String()).
			ToSlice()...)
	writeJSON(w, http.StatusOK, itemResponse{Data: remote.FromTransaction(t)})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))

	ctx, cancel := s.storeContext(r.Context())
	defer cancel()

	if err := s.store.Delete(ctx, id); err != nil {
		s.logFailure(r, applog.OpDelete, id, err)
		writeError(w, err)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transaction deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldTransactionID, id)
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) logFailure(r *http.Request, op, id string, err error) {
	applog.FromContext(r.Context()).LogError(r.Context(), "Transaction request failed", err, op,
		applog.NewFields().WithTransaction(id, "", ""))
}
