package catalog_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"Storefront/internal/catalog"
)

func newCatalogTS(t *testing.T) *httptest.Server {
	t.Helper()

	s := &catalog.Server{Store: catalog.NewStore()}

	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:     zap.NewNop(),
		Service: "catalog",
	})

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T) *catalog.Client {
	t.Helper()
	ts := newCatalogTS(t)
	return catalog.NewClient(ts.URL+"/products/", time.Second, zap.NewNop())
}

func TestClient_ListAndGet(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	list, err := c.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != len(catalog.SeedProducts()) {
		t.Fatalf("len=%d want=%d", len(list), len(catalog.SeedProducts()))
	}

	p, err := c.Get(ctx, 2)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Title != "Wireless Mouse" {
		t.Fatalf("title=%q", p.Title)
	}
	if p.Rating.Count != 87 {
		t.Fatalf("rating count=%d", p.Rating.Count)
	}
}

func TestClient_CreateUpdateDelete(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	created, err := c.Create(ctx, catalog.Draft{
		Title:       "Desk Lamp",
		Price:       24.5,
		Description: "LED lamp",
		Category:    "home",
		Image:       "https://img.example.com/lamp.png",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != 4 {
		t.Fatalf("id=%d want=4", created.ID)
	}
	if created.Rating != (catalog.Rating{}) {
		t.Fatalf("rating=%+v want zero", created.Rating)
	}

	price := 19.0
	updated, err := c.Update(ctx, created.ID, catalog.Patch{Price: &price})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Price != price || updated.Title != "Desk Lamp" {
		t.Fatalf("updated=%+v", updated)
	}

	if err := c.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := c.Get(ctx, created.ID); !catalog.IsNotFound(err) {
		t.Fatalf("get after delete err=%v want not found", err)
	}
}

func TestClient_NotFoundCarriesServerMessage(t *testing.T) {
	c := newClient(t)

	_, err := c.Get(context.Background(), 99)

	var ae *catalog.APIError
	if !errors.As(err, &ae) {
		t.Fatalf("err=%T %v want *APIError", err, err)
	}
	if ae.Status != http.StatusNotFound {
		t.Fatalf("status=%d", ae.Status)
	}
	if err.Error() != "product not found" {
		t.Fatalf("message=%q", err.Error())
	}
}

func TestClient_FallbackMessageWithoutErrorBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(ts.Close)

	c := catalog.NewClient(ts.URL, time.Second, nil)
	_, err := c.List(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}

	want := "Http failure response for " + ts.URL + ": 500 Internal Server Error"
	if err.Error() != want {
		t.Fatalf("message=%q want=%q", err.Error(), want)
	}
}

func TestClient_SendsRequestID(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Request-Id")
		_, _ = w.Write([]byte("null"))
	}))
	t.Cleanup(ts.Close)

	c := catalog.NewClient(ts.URL, time.Second, nil)
	list, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("list=%v want empty non-nil", list)
	}
	if got == "" {
		t.Fatalf("missing X-Request-Id")
	}
}

func TestClient_Unavailable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := catalog.NewClient(url, time.Second, nil)
	_, err := c.List(context.Background())
	if !errors.Is(err, catalog.ErrUnavailable) {
		t.Fatalf("err=%v want ErrUnavailable", err)
	}
}

func TestClient_EmptyGetBodyIsNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(ts.Close)

	c := catalog.NewClient(ts.URL, time.Second, nil)
	_, err := c.Get(context.Background(), 404)

	if !catalog.IsNotFound(err) {
		t.Fatalf("err=%v want not found", err)
	}
	if err.Error() != "product not found" {
		t.Fatalf("message=%q", err.Error())
	}
}
