package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func TestSeed_UniqueIDsInOrder(t *testing.T) {
	products := Seed()
	if len(products) != 12 {
		t.Fatalf("len=%d want=12", len(products))
	}
	for i, p := range products {
		if p.ID != i+1 {
			t.Fatalf("products[%d].ID=%d want=%d", i, p.ID, i+1)
		}
	}
	if !products[0].Price.Equal(decimal.NewFromInt(249)) {
		t.Fatalf("price=%s", products[0].Price)
	}
	if products[9].InStock {
		t.Fatalf("DSLR Pro must be out of stock")
	}
}

func TestProduct_PriceIsJSONNumber(t *testing.T) {
	p := Product{ID: 1, Name: "a", Price: decimal.RequireFromString("19.99"), Image: "x"}
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := m["price"].(float64); !ok {
		t.Fatalf("price encoded as %T: %s", m["price"], b)
	}

	var back Product
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !back.Price.Equal(p.Price) {
		t.Fatalf("price=%s want=%s", back.Price, p.Price)
	}
}

func TestSeed_ReturnsFreshCopy(t *testing.T) {
	a := Seed()
	a[0].Name = "changed"
	if Seed()[0].Name != "Chronos Elite" {
		t.Fatalf("seed mutated through returned slice")
	}
}

func TestFilter(t *testing.T) {
	products := Seed()

	cases := []struct {
		query string
		want  int
	}{
		{"", 12},
		{"   ", 12},
		{"pro", 2},
		{"AIRBUDS", 1},
		{"fashion", 4},
		{"sports", 1},
		{"nothing-matches", 0},
	}

	for _, tc := range cases {
		if got := Filter(products, tc.query); len(got) != tc.want {
			t.Errorf("Filter(%q) len=%d want=%d", tc.query, len(got), tc.want)
		}
	}
}

func TestInCategory(t *testing.T) {
	got := InCategory(Seed(), "electronics")
	if len(got) != 7 {
		t.Fatalf("len=%d want=7", len(got))
	}
	if len(InCategory(Seed(), "")) != 12 {
		t.Fatalf("empty category must not filter")
	}
}

func TestFilterCategories(t *testing.T) {
	got := FilterCategories(Categories(), "home")
	if len(got) != 1 || got[0].Name != "Home & Kitchen" {
		t.Fatalf("got=%v", got)
	}
}

func TestMemStore(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	list, err := s.ListSortedByID(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].ID >= list[i].ID {
			t.Fatalf("not sorted at %d", i)
		}
	}

	p, ok, err := s.Get(ctx, 7)
	if err != nil || !ok {
		t.Fatalf("get 7: ok=%v err=%v", ok, err)
	}
	if p.Name != "OLED Vision" {
		t.Fatalf("name=%s", p.Name)
	}

	if _, ok, _ := s.Get(ctx, 99); ok {
		t.Fatalf("id 99 must not exist")
	}
}

func TestServer_Routes(t *testing.T) {
	s := &Server{Store: NewMemStore(), Log: zap.NewNop()}
	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/products?q=hoodie")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}

	var products []Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(products) != 1 || products[0].ID != 8 {
		t.Fatalf("products=%v", products)
	}

	for path, want := range map[string]int{
		"/products/3":   http.StatusOK,
		"/products/404": http.StatusNotFound,
		"/products/abc": http.StatusBadRequest,
		"/categories":   http.StatusOK,
	} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != want {
			t.Errorf("%s status=%d want=%d", path, resp.StatusCode, want)
		}
	}
}
