package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transaksi/internal/core"
)

type recorded struct {
	method string
	path   string
	body   map[string]any
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path}
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			assert.NoError(t, json.Unmarshal(b, &rec.body))
		}
		calls = append(calls, rec)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/transaksi", srv.Client())
	require.NoError(t, err)
	return c, &calls
}

func TestNewValidatesURL(t *testing.T) {
	_, err := New("", nil)
	assert.Error(t, err)
	_, err = New("ftp://example.com/transaksi", nil)
	assert.Error(t, err)
	c, err := New(DefaultURL+"/", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultURL, c.baseURL)
}

func TestListDecodesAndSortsByRecency(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":[
			{"id":"old","type":"Pemasukan","amount":150000,"date":"2024-03-05T00:00:00Z","description":"nasi",
			 "buyer":"Ani","phone":"0812","address":"Jl. Mawar","updated_at":"2024-03-05T08:00:00Z"},
			{"id":"new","type":"pengeluaran","amount":"50000.5","date":"2024-03-06T00:00:00Z","description":"gas",
			 "buyer":"","phone":"","address":"","updated_at":"2024-03-06T08:00:00Z"}
		]}`)
	})

	got, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "new", got[0].ID)
	assert.Equal(t, core.KindExpense, got[0].Kind)
	assert.Equal(t, "50000.5", got[0].Amount.String())
	assert.Nil(t, got[0].Contact)

	assert.Equal(t, "old", got[1].ID)
	assert.Equal(t, "2024-03-05", got[1].Date.String())
	require.NotNil(t, got[1].Contact)
	assert.Equal(t, "Ani", got[1].Contact.Buyer)
	assert.Equal(t, time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC), got[1].UpdatedAt)
}

func TestListIsAllOrNothing(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":[
			{"id":"ok","type":"Pemasukan","amount":1,"date":"2024-03-05T00:00:00Z"},
			{"id":"bad","type":"Pemasukan","amount":1,"date":"yesterday"}
		]}`)
	})

	got, err := c.List(context.Background())
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, core.ErrBackendUnavailable), "got %v", err)
}

func TestToTransactionRequiresAmount(t *testing.T) {
	for name, body := range map[string]string{
		"missing": `{"id":"a","type":"Pemasukan","date":"2024-03-05"}`,
		"null":    `{"id":"a","type":"Pemasukan","amount":null,"date":"2024-03-05"}`,
	} {
		var j TransactionJSON
		require.NoError(t, json.Unmarshal([]byte(body), &j), name)
		_, err := j.ToTransaction()
		assert.ErrorIs(t, err, core.ErrInvalidAmount, name)
	}

	var j TransactionJSON
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","type":"Pemasukan","amount":0,"date":"2024-03-05"}`), &j))
	tx, err := j.ToTransaction()
	require.NoError(t, err)
	assert.True(t, tx.Amount.IsZero())
}

func TestCreateSendsWireShape(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	id, err := c.Create(context.Background(), core.Transaction{
		ID:          "abc",
		Kind:        core.KindExpense,
		Amount:      decimal.NewFromInt(50000),
		Date:        core.NewDate(2024, 3, 5),
		Description: "gas",
		Contact:     &core.Contact{Buyer: "ignored"},
	})
	require.NoError(t, err)
	assert.Equal(t, "abc", id)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, http.MethodPost, call.method)
	assert.Equal(t, "/transaksi", call.path)
	assert.Equal(t, "abc", call.body["id"])
	assert.Equal(t, "Pengeluaran", call.body["type"])
	assert.Equal(t, float64(50000), call.body["amount"])
	assert.Equal(t, "2024-03-05T00:00:00Z", call.body["date"])
	assert.NotContains(t, call.body, "buyer")
	assert.NotContains(t, call.body, "phone")
	assert.NotContains(t, call.body, "address")
}

func TestUpdateOmitsID(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	err := c.Update(context.Background(), "abc", core.Transaction{
		ID:      "abc",
		Kind:    core.KindIncome,
		Amount:  decimal.NewFromInt(1),
		Date:    core.NewDate(2024, 3, 5),
		Contact: &core.Contact{Buyer: "Ani"},
	})
	require.NoError(t, err)

	call := (*calls)[0]
	assert.Equal(t, http.MethodPut, call.method)
	assert.Equal(t, "/transaksi/abc", call.path)
	assert.NotContains(t, call.body, "id")
	assert.Equal(t, "Ani", call.body["buyer"])
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, core.ErrNotFound},
		{http.StatusBadRequest, core.ErrValidationRejected},
		{http.StatusUnprocessableEntity, core.ErrValidationRejected},
		{http.StatusConflict, core.ErrValidationRejected},
		{http.StatusInternalServerError, core.ErrBackendUnavailable},
		{http.StatusCreated, core.ErrBackendUnavailable},
	}
	for _, tc := range cases {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", tc.status)
		})
		err := c.Delete(context.Background(), "abc")
		assert.True(t, errors.Is(err, tc.want), "status %d: got %v", tc.status, err)
	}
}

func TestConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	target := srv.URL + "/transaksi"
	srv.Close()

	c, err := New(target, nil)
	require.NoError(t, err)
	_, err = c.List(context.Background())
	assert.True(t, errors.Is(err, core.ErrBackendUnavailable), "got %v", err)
}

func TestTimeoutIsBackendUnavailable(t *testing.T) {
	block := make(chan struct{})
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	})
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.List(ctx)
	assert.True(t, errors.Is(err, core.ErrBackendUnavailable), "got %v", err)
}

func TestCallsLogUnderRemoteComponent(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	require.NoError(t, c.Delete(context.Background(), "abc"))

	out := buf.String()
	assert.Contains(t, out, "component=remote")
	assert.Contains(t, out, "operation=delete")
}
