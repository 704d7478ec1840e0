package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"transaksi/internal/core"
	"transaksi/internal/remote"
)

var errBadPayload = errors.New("invalid request body")

var validate = validator.New(validator.WithRequiredStructEnabled())

// parsePeriod reads the optional month and year query parameters. Both or
// neither must be given.
func parsePeriod(r *http.Request) (core.Period, bool, error) {
	q := r.URL.Query()
	monthStr := strings.TrimSpace(q.Get("month"))
	yearStr := strings.TrimSpace(q.Get("year"))
	if monthStr == "" && yearStr == "" {
		return core.Period{}, false, nil
	}
	if monthStr == "" || yearStr == "" {
		return core.Period{}, false, fmt.Errorf("%w: month and year must be given together", core.ErrInvalidPeriod)
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil {
		return core.Period{}, false, fmt.Errorf("%w: month %q", core.ErrInvalidPeriod, monthStr)
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return core.Period{}, false, fmt.Errorf("%w: year %q", core.ErrInvalidPeriod, yearStr)
	}
	p := core.Period{Month: month, Year: year}
	if err := p.Validate(); err != nil {
		return core.Period{}, false, err
	}
	return p, true, nil
}

// parseTransaction decodes a JSON transaction body. Unknown fields are
// ignored; a malformed body wraps errBadPayload and an invalid record wraps
// the matching core input error.
func parseTransaction(w http.ResponseWriter, r *http.Request) (core.Transaction, error) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()

	var payload remote.TransactionJSON
	dec := json.NewDecoder(body)
	if err := dec.Decode(&payload); err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %v", errBadPayload, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return core.Transaction{}, fmt.Errorf("%w: trailing data", errBadPayload)
	}
	if err := validate.Struct(payload); err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %s", errBadPayload, fieldErrors(err))
	}
	return payload.ToTransaction()
}

// fieldErrors flattens validator output into "field: tag" pairs.
func fieldErrors(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, strings.ToLower(fe.Field())+": "+fe.Tag())
	}
	return strings.Join(parts, ", ")
}
