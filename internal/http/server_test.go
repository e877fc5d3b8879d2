package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kharcha/internal/core"
	"kharcha/internal/ledger/memory"
	"kharcha/internal/log"
	"kharcha/internal/services"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	svc := services.NewRecordService(memory.New(), nil)
	logger := log.New(log.Config{
		Component: log.ComponentHTTP,
		Handler:   slog.NewTextHandler(testWriter{t}, nil),
	})
	return NewServer(":0", svc, core.DefaultHistoryPageSize, logger)
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestCreateExpenseAndDashboard(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/expenses",
		`{"date":"2024-01-05","amount":"5000","category":"Salary","direction":"income"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create income: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created createdResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created response: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created response carries no id")
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/expenses",
		`{"date":"2024-01-06","amount":"1200","category":"Groceries","direction":"expense","funding_source":"Salary"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense: status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/dashboard", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: status = %d", rec.Code)
	}
	var dash dashboardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &dash); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if dash.CostPerKm != core.MetricPlaceholder {
		t.Errorf("cost per km = %q, want placeholder without readings", dash.CostPerKm)
	}
}

func TestInsufficientFundsReturns422(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/expenses",
		`{"date":"2024-01-05","amount":"100","category":"Cash","direction":"income"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed income: status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/expenses",
		`{"date":"2024-01-06","amount":"500","category":"Groceries","direction":"expense","funding_source":"Cash"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422; body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Error  string            `json:"error"`
		Detail map[string]string `json:"detail"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Error != "insufficient_funds" {
		t.Errorf("error = %q, want insufficient_funds", body.Error)
	}
	if body.Detail["source"] != "Cash" || body.Detail["available"] != "100.00" {
		t.Errorf("detail = %v, want source Cash available 100.00", body.Detail)
	}
}

func TestOdometerRegressionReturns422(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/readings",
		`{"date":"2024-01-05","odometer":1000,"fuel_status":"Main"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first reading: status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/readings",
		`{"date":"2024-01-06","odometer":900,"fuel_status":"Main"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422; body %s", rec.Code, rec.Body.String())
	}
}

func TestHistoryGroupsAndLimit(t *testing.T) {
	srv := newTestServer(t)

	for _, body := range []string{
		`{"date":"2024-01-05","amount":"5000","category":"Salary","direction":"income"}`,
		`{"date":"2024-01-06","amount":"300","category":"Groceries","direction":"expense","funding_source":"Salary"}`,
		`{"date":"2024-01-06","amount":"200","category":"Dining Out","direction":"expense","funding_source":"Salary"}`,
	} {
		if rec := doJSON(t, srv, http.MethodPost, "/api/expenses", body); rec.Code != http.StatusCreated {
			t.Fatalf("seed: status = %d, body %s", rec.Code, rec.Body.String())
		}
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/history?limit=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("history: status = %d", rec.Code)
	}
	var groups []historyGroupView
	if err := json.Unmarshal(rec.Body.Bytes(), &groups); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1 (limit 2 stays within 06 Jan)", len(groups))
	}
	if got := groups[0].Date; got != "06 Jan 2024" {
		t.Errorf("group label = %q, want 06 Jan 2024", got)
	}
	if len(groups[0].Items) != 2 {
		t.Errorf("items = %d, want 2", len(groups[0].Items))
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/history?limit=0", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("limit=0: status = %d, want 400", rec.Code)
	}
}

func TestRepaymentFlow(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/loans",
		`{"date":"2024-01-05","direction":"taken","counterparty":"Ravi","principal":"1000"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create loan: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created createdResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created response: %v", err)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/loans/"+created.ID+"/repayments",
		`{"date":"2024-01-10","amount":"400"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("repayment: status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/loans/missing/repayments",
		`{"date":"2024-01-10","amount":"400"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing loan: status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/history", "")
	var groups []historyGroupView
	if err := json.Unmarshal(rec.Body.Bytes(), &groups); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	var loanItem *historyItemView
	for _, g := range groups {
		for i := range g.Items {
			if g.Items[i].Kind == "loan" {
				loanItem = &g.Items[i]
			}
		}
	}
	if loanItem == nil {
		t.Fatal("loan missing from history")
	}
	if loanItem.Balance != "600.00" || loanItem.Settled {
		t.Errorf("loan balance = %q settled = %v, want 600.00 open", loanItem.Balance, loanItem.Settled)
	}
}

func TestUnknownFieldRejected(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/api/expenses",
		`{"date":"2024-01-05","amount":"100","category":"Cash","direction":"income","bogus":true}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
