package rupeevest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/etnz/riskfolio"
	"github.com/rs/zerolog"
)

// screener serves rows as a screener response and counts the requests.
func screener(t *testing.T, rows []map[string]any) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Method != http.MethodPost || r.URL.Path != "/functionalities/asset_class_section" {
			http.NotFound(w, r)
			return
		}
		var query map[string]any
		if err := json.NewDecoder(r.Body).Decode(&query); err != nil || query["condn_type"] != "asset" {
			http.Error(w, "bad query", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"schemedata": rows})
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestCatalog_Funds(t *testing.T) {
	rows := []map[string]any{
		{"s_name": "Steady Large Cap", "classification": "Equity : Large Cap", "returns_10year": 12.5, "returns_5year": 14.0},
		{"s_name": "Small Wonder", "classification": "Equity : Small Cap", "returns_10year": "18.2", "rupeevest_rating": "5"},
		{"s_name": "Bluechip", "classification": "EQUITY : LARGE CAP", "returns_10year": 12.5, "returns_5year": 15.0},
		{"s_name": "Young Fund", "classification": "Equity : Large Cap", "returns_10year": "-", "returns_5year": 20.0},
		{"s_name": "Liquid Plus", "classification": "Debt : Liquid", "returns_10year": 7.0},
	}
	srv, _ := screener(t, rows)
	c := New(srv.URL, srv.Client(), zerolog.Nop())

	funds, err := c.Funds(context.Background(), riskfolio.LargeCap, riskfolio.M(300000))
	if err != nil {
		t.Fatalf("Funds() unexpected error: %v", err)
	}
	var names []string
	for _, f := range funds {
		names = append(names, f.Name)
	}
	want := []string{"Bluechip", "Steady Large Cap", "Young Fund"}
	if fmt.Sprint(names) != fmt.Sprint(want) {
		t.Errorf("Funds() = %v, want %v", names, want)
	}

	small, err := c.Funds(context.Background(), riskfolio.SmallCap, riskfolio.M(300000))
	if err != nil {
		t.Fatalf("Funds() unexpected error: %v", err)
	}
	if len(small) != 1 || small[0].Return10Y != 18.2 || small[0].Rating != 5 {
		t.Errorf("Funds(smallCap) = %+v, want Small Wonder with its figures", small)
	}

	mid, err := c.Funds(context.Background(), riskfolio.MidCap, riskfolio.M(300000))
	if err != nil || len(mid) != 0 {
		t.Errorf("Funds(midCap) = %v, %v, want no fund", mid, err)
	}
}

func TestCatalog_FundsAreLimited(t *testing.T) {
	var rows []map[string]any
	for i := range 15 {
		rows = append(rows, map[string]any{
			"s_name":         fmt.Sprintf("Fund %02d", i),
			"classification": "Equity : Mid Cap",
			"returns_10year": float64(i),
		})
	}
	srv, hits := screener(t, rows)
	c := New(srv.URL, srv.Client(), zerolog.Nop())

	funds, err := c.Funds(context.Background(), riskfolio.MidCap, riskfolio.M(5000000))
	if err != nil {
		t.Fatalf("Funds() unexpected error: %v", err)
	}
	if len(funds) != Limit {
		t.Fatalf("Funds() returned %d funds, want %d", len(funds), Limit)
	}
	if funds[0].Name != "Fund 14" || funds[Limit-1].Name != "Fund 05" {
		t.Errorf("Funds() = %s ... %s, want Fund 14 ... Fund 05", funds[0].Name, funds[Limit-1].Name)
	}

	// the screener is queried once.
	if _, err := c.Funds(context.Background(), riskfolio.SmallCap, riskfolio.M(1)); err != nil {
		t.Fatalf("Funds() unexpected error: %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("screener queried %d times, want 1", got)
	}
}

func TestCatalog_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	c := New(srv.URL, srv.Client(), zerolog.Nop())

	if _, err := c.Funds(context.Background(), riskfolio.LargeCap, riskfolio.M(1)); err == nil {
		t.Error("Funds() expected an error from an unavailable screener")
	}
	if _, err := c.Funds(context.Background(), "microCap", riskfolio.M(1)); err == nil {
		t.Error("Funds() expected an error for an unknown category")
	}
	if !c.Refreshed().IsZero() {
		t.Error("Refreshed() is set after a failed refresh")
	}
}

func TestParseSchemes(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    int
		wantErr bool
	}{
		{"rows", `{"schemedata": [{"s_name": "A"}, {"s_name": "B"}, "junk"]}`, 2, false},
		{"empty", `{"schemedata": []}`, 0, false},
		{"missing", `{"other": []}`, 0, true},
		{"not a list", `{"schemedata": {"s_name": "A"}}`, 0, true},
		{"not json", `<html>`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSchemes([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseSchemes() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != tt.want {
				t.Errorf("parseSchemes() = %d rows, want %d", len(got), tt.want)
			}
		})
	}
}

func TestRank(t *testing.T) {
	// each pair differs only by a lower priority criterion.
	tests := []struct {
		name        string
		best, worst scheme
	}{
		{"10 year return first", scheme{Return10Y: 10, Return5Y: 1}, scheme{Return10Y: 9, Return5Y: 50}},
		{"then rating", scheme{Rating: 5}, scheme{Rating: 4, Consistency: 9}},
		{"lower risk", scheme{Risk: 1}, scheme{Risk: 2}},
		{"lower expense ratio", scheme{ExpenseRatio: 0.5}, scheme{ExpenseRatio: 1.5}},
		{"beta closer to zero", scheme{Beta: -0.8}, scheme{Beta: 0.9}},
		{"then assets", scheme{AUM: 1000}, scheme{AUM: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.best.Name, tt.worst.Name = "best", "worst"
			got := rank([]scheme{tt.worst, tt.best})
			if got[0].Name != "best" {
				t.Errorf("rank() = %s first, want best", got[0].Name)
			}
		})
	}
}

func TestRank_UnknownExpenseRatioLast(t *testing.T) {
	for _, ratio := range []any{nil, "-", "N.A."} {
		t.Run(fmt.Sprint(ratio), func(t *testing.T) {
			unknown := map[string]any{"s_name": "unknown", "returns_10year": 12.0}
			if ratio != nil {
				unknown["expenceratio"] = ratio
			}
			costly := newScheme(map[string]any{"s_name": "costly", "returns_10year": 12.0, "expenceratio": "2.5"})

			got := rank([]scheme{newScheme(unknown), costly})
			if got[0].Name != "costly" {
				t.Errorf("rank() = %s first, want costly", got[0].Name)
			}
			if f := got[1].fund(); f.ExpenseRatio != 0 {
				t.Errorf("fund().ExpenseRatio = %v, want 0 for an unknown ratio", f.ExpenseRatio)
			}
			if _, err := json.Marshal(got[1].fund()); err != nil {
				t.Errorf("json.Marshal(fund()) unexpected error: %v", err)
			}
		})
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		in   any
		want float64
	}{
		{12.5, 12.5},
		{"7.25", 7.25},
		{" 3 ", 3},
		{"Unrated", 0},
		{"", 0},
		{nil, 0},
		{json.Number("4.5"), 4.5},
		{"NaN", 0},
	}
	for _, tt := range tests {
		if got := number(tt.in); got != tt.want {
			t.Errorf("number(%#v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
