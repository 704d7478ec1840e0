package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"transaksi/internal/core"
	"transaksi/internal/remote"
)

type errorResponse struct {
	Error string `json:"error"`
}

type itemResponse struct {
	Data remote.TransactionJSON `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

func writeList(w http.ResponseWriter, txs []core.Transaction) {
	resp := remote.ListResponse{Data: make([]remote.TransactionJSON, 0, len(txs))}
	for _, t := range txs {
		resp.Data = append(resp.Data, remote.FromTransaction(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

// statusFor maps the error taxonomy onto the status codes the remote client
// understands.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadPayload), core.IsInputError(err):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrValidationRejected):
		return http.StatusConflict
	case errors.Is(err, core.ErrBackendUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
