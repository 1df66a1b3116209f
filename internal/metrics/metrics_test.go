package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mmynk/circlewallet/internal/calculator"
	"github.com/mmynk/circlewallet/internal/models"
)

func TestObserver(t *testing.T) {
	m := New()

	m.TransactionRecorded(&models.Transaction{Type: models.TypeExpense})
	m.TransactionRecorded(&models.Transaction{Type: models.TypeExpense})
	m.TransactionRecorded(&models.Transaction{Type: models.TypeCollection})

	if got := testutil.ToFloat64(m.TransactionsRecorded.WithLabelValues("expense")); got != 2 {
		t.Errorf("expense count: expected 2, got %v", got)
	}
	if got := testutil.ToFloat64(m.TransactionsRecorded.WithLabelValues("collection")); got != 1 {
		t.Errorf("collection count: expected 1, got %v", got)
	}

	event := &models.Event{Settlement: &models.Settlement{Mode: models.SettleCarryover, Amount: -300}}
	m.SettlementCommitted(event, &calculator.Plan{Surplus: -300})

	if got := testutil.ToFloat64(m.SettlementsCommitted.WithLabelValues("carryover")); got != 1 {
		t.Errorf("carryover count: expected 1, got %v", got)
	}
}

func TestInterceptor(t *testing.T) {
	m := New()
	interceptor := m.Interceptor()

	ok := interceptor.WrapUnary(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, nil
	})
	failing := interceptor.WrapUnary(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, connect.NewError(connect.CodePermissionDenied, errors.New("nope"))
	})

	req := connect.NewRequest(&struct{}{})
	ok(context.Background(), req)
	failing(context.Background(), req)

	// Requests built outside a handler carry an empty procedure.
	if got := testutil.ToFloat64(m.RPCRequests.WithLabelValues("", "ok")); got != 1 {
		t.Errorf("ok count: expected 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.RPCRequests.WithLabelValues("", "permission_denied")); got != 1 {
		t.Errorf("permission_denied count: expected 1, got %v", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.TransactionRecorded(&models.Transaction{Type: models.TypeGeneralIncome})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `circlewallet_transactions_recorded_total{type="general_income"} 1`) {
		t.Errorf("metrics output missing transaction counter:\n%s", body)
	}
}
