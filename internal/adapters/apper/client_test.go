package apper_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"stayscape/internal/adapters/apper"
	"stayscape/internal/domain"
)

func newClient(t *testing.T, srv *httptest.Server) *apper.Client {
	t.Helper()
	c, err := apper.New(srv.URL, "proj-1", "pk-1", 100)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestClient_New_RequiresCredentials(t *testing.T) {
	if _, err := apper.New("http://x", "", "pk", 10); err == nil {
		t.Fatal("expected an error without a project id")
	}
}

func TestClient_Fetch_DecodesEnvelope(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/tables/hotel_c/records/fetch" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Apper-Project-Id") != "proj-1" || r.Header.Get("X-Apper-Public-Key") != "pk-1" {
			t.Errorf("auth headers missing")
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    []map[string]any{{"Id": 1, "name_c": "A"}, {"Id": 2, "name_c": "B"}},
		})
	}))
	defer srv.Close()

	c := newClient(t, srv)
	recs, err := c.Fetch(context.Background(), "hotel_c", domain.Query{
		Fields:  []string{"Id", "name_c"},
		OrderBy: []domain.Sort{{Field: "name_c", Desc: true}},
		Limit:   10,
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(recs) != 2 || recs[1]["name_c"] != "B" {
		t.Fatalf("unexpected records: %+v", recs)
	}

	// wire shapes the record API expects
	fields, ok := gotBody["fields"].([]any)
	if !ok || len(fields) != 2 {
		t.Fatalf("field projection not sent: %+v", gotBody)
	}
	orderBy := gotBody["orderBy"].([]any)[0].(map[string]any)
	if orderBy["fieldName"] != "name_c" || orderBy["sorttype"] != "DESC" {
		t.Fatalf("orderBy shape: %+v", orderBy)
	}
	paging := gotBody["pagingInfo"].(map[string]any)
	if paging["limit"] != float64(10) {
		t.Fatalf("pagingInfo: %+v", paging)
	}
}

func TestClient_EnvelopeFailureBecomesRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "table is locked"})
	}))
	defer srv.Close()

	c := newClient(t, srv)
	_, err := c.Fetch(context.Background(), "hotel_c", domain.Query{})
	var re *apper.RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if re.Message != "table is locked" {
		t.Fatalf("message: %q", re.Message)
	}
}

func TestClient_Get_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newClient(t, srv)
	_, err := c.Get(context.Background(), "hotel_c", 7, domain.Query{})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_Get_NullDataIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": nil})
	}))
	defer srv.Close()

	c := newClient(t, srv)
	_, err := c.Get(context.Background(), "hotel_c", 7, domain.Query{})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for null data, got %v", err)
	}
}

func TestClient_RetriesTransientFailures(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{"Id": 7}})
	}))
	defer srv.Close()

	c := newClient(t, srv)
	rec, err := c.Get(context.Background(), "hotel_c", 7, domain.Query{})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if rec["Id"] != float64(7) {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestClient_Create_ReturnsPerRecordResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/tables/review_c/records" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"results": []map[string]any{
				{"success": true, "data": map[string]any{"Id": 11, "title_c": "ok"}},
				{"success": false, "message": "rejected", "errors": []map[string]any{
					{"field": "rating_c", "fieldLabel": "Rating", "message": "out of range"},
				}},
			},
		})
	}))
	defer srv.Close()

	c := newClient(t, srv)
	results, err := c.Create(context.Background(), "review_c", []domain.Record{{}, {}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(results) != 2 || !results[0].Success || results[1].Success {
		t.Fatalf("unexpected results: %+v", results)
	}
	if results[1].Errors[0].Label != "Rating" {
		t.Fatalf("field errors not decoded: %+v", results[1].Errors)
	}
}

func TestClient_Delete_SendsRecordIds(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method: %s", r.Method)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"results": []map[string]any{{"success": true}},
		})
	}))
	defer srv.Close()

	c := newClient(t, srv)
	results, err := c.Delete(context.Background(), "booking_c", []int{4})
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !results[0].Success {
		t.Fatalf("unexpected results: %+v", results)
	}
	ids := gotBody["RecordIds"].([]any)
	if len(ids) != 1 || ids[0] != float64(4) {
		t.Fatalf("RecordIds: %+v", gotBody)
	}
}
