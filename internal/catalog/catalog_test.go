package catalog_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nutriverse/nutribot/internal/catalog"
)

func TestSearch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		want    catalog.Product
		wantErr error
	}{
		{
			name:   "first product wins",
			status: http.StatusOK,
			body:   `{"products":[{"product_name":"Choco Crisp","brands":"Acme","ingredients_text":"wheat flour, sugar"},{"product_name":"Other"}]}`,
			want:   catalog.Product{Name: "Choco Crisp", Brand: "Acme", Ingredients: "wheat flour, sugar"},
		},
		{
			name:   "missing fields become unknown",
			status: http.StatusOK,
			body:   `{"products":[{"ingredients_text":"oats"}]}`,
			want:   catalog.Product{Name: catalog.Unknown, Brand: catalog.Unknown, Ingredients: "oats"},
		},
		{
			name:   "skips products without ingredients",
			status: http.StatusOK,
			body:   `{"products":[{"product_name":"Plain","brands":"Acme"},{"product_name":"Blank","ingredients_text":"  "},{"product_name":"Oat Bar","brands":"Acme","ingredients_text":"oats, honey"}]}`,
			want:   catalog.Product{Name: "Oat Bar", Brand: "Acme", Ingredients: "oats, honey"},
		},
		{
			name:    "no product lists ingredients",
			status:  http.StatusOK,
			body:    `{"products":[{"product_name":"Plain","brands":"Acme"}]}`,
			wantErr: catalog.ErrProductNotFound,
		},
		{
			name:    "no products",
			status:  http.StatusOK,
			body:    `{"products":[]}`,
			wantErr: catalog.ErrProductNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/cgi/search.pl" {
					t.Errorf("path = %q", r.URL.Path)
				}
				q := r.URL.Query()
				if q.Get("search_terms") != "acme" || q.Get("json") != "1" || q.Get("page_size") != "5" {
					t.Errorf("query = %v", q)
				}
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := catalog.NewClient(catalog.Config{BaseURL: srv.URL}, srv.Client(), nil)
			got, err := c.Search(context.Background(), "acme")
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Search() error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Search() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSearchOpensCircuit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := catalog.NewClient(catalog.Config{
		BaseURL:       srv.URL,
		MaxFailures:   2,
		ResetInterval: time.Hour,
	}, srv.Client(), nil)

	for i := 0; i < 2; i++ {
		if _, err := c.Search(context.Background(), "x"); err == nil {
			t.Fatalf("attempt %d: expected error", i)
		}
	}
	_, err := c.Search(context.Background(), "x")
	if !errors.Is(err, catalog.ErrCircuitOpen) {
		t.Fatalf("Search() error = %v, want ErrCircuitOpen", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server calls = %d, want 2", got)
	}
}

func TestNotFoundDoesNotTripCircuit(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"products":[]}`))
	}))
	defer srv.Close()

	c := catalog.NewClient(catalog.Config{BaseURL: srv.URL, MaxFailures: 1, ResetInterval: time.Hour}, srv.Client(), nil)
	for i := 0; i < 3; i++ {
		if _, err := c.Search(context.Background(), "x"); !errors.Is(err, catalog.ErrProductNotFound) {
			t.Fatalf("attempt %d: error = %v, want ErrProductNotFound", i, err)
		}
	}
}
