package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rhuss/buchung/pkg/auth"
	"github.com/rhuss/buchung/pkg/booking"
	"github.com/rhuss/buchung/pkg/identity/local"
	"github.com/rhuss/buchung/pkg/storage/memory"
	"github.com/rhuss/buchung/pkg/transport"
)

// newTestServer wires the full stack over the in-memory store and the
// local identity provider.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := memory.New()

	provider := local.New(local.Config{
		PoolName:   "booking-userpool",
		ClientName: "booking-client-app",
		SigningKey: "test-signing-key",
	})

	authSvc, err := auth.NewService(context.Background(), provider, auth.Config{PoolNameFragment: "userpool"}, nil)
	if err != nil {
		t.Fatalf("auth.NewService: %v", err)
	}

	bookingSvc, err := booking.NewService(store, booking.Config{}, nil)
	if err != nil {
		t.Fatalf("booking.NewService: %v", err)
	}

	// Metrics stay off: the default registry is process-global and the
	// middleware is covered by its own package tests.
	cfg := DefaultConfig()
	cfg.EnableMetrics = false

	adapter := NewAdapter(authSvc, bookingSvc, nil, store, cfg, nil,
		transport.Recovery(nil), transport.RequestID())

	srv := httptest.NewServer(adapter.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil && err != io.EOF {
		t.Fatalf("decoding response: %v", err)
	}
	return resp.StatusCode, decoded
}

func TestHelloRoute(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, "GET", srv.URL+"/hello", nil)
	if status != 200 {
		t.Fatalf("status = %d, want 200", status)
	}
	if body["message"] != "Hello from API" {
		t.Errorf("message = %v", body["message"])
	}
	if body["statusCode"] != float64(200) {
		t.Errorf("statusCode = %v", body["statusCode"])
	}
}

func TestSignUpThenSignIn(t *testing.T) {
	srv := newTestServer(t)

	signup := map[string]string{
		"email":     "anna@example.com",
		"firstName": "Anna",
		"lastName":  "Schmidt",
		"password":  "sup3rsecret@pass",
	}
	status, _ := doJSON(t, "POST", srv.URL+"/signup", signup)
	if status != 200 {
		t.Fatalf("signup status = %d, want 200", status)
	}

	status, body := doJSON(t, "POST", srv.URL+"/signin", map[string]string{
		"email":    "anna@example.com",
		"password": "sup3rsecret@pass",
	})
	if status != 200 {
		t.Fatalf("signin status = %d, want 200", status)
	}
	token, _ := body["accessToken"].(string)
	if token == "" {
		t.Fatal("expected a non-empty accessToken")
	}
}

func TestSignUpRejectsWeakPassword(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, "POST", srv.URL+"/signup", map[string]string{
		"email":     "anna@example.com",
		"firstName": "Anna",
		"lastName":  "Schmidt",
		"password":  "short1@",
	})
	if status != 400 {
		t.Fatalf("status = %d, want 400", status)
	}
	msg, _ := body["message"].(string)
	if !strings.HasPrefix(msg, "ERROR. ") {
		t.Errorf("message = %q, want ERROR.-prefixed envelope", msg)
	}
}

func TestSignInWrongPassword(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, "POST", srv.URL+"/signup", map[string]string{
		"email":     "anna@example.com",
		"firstName": "Anna",
		"lastName":  "Schmidt",
		"password":  "sup3rsecret@pass",
	})

	status, _ := doJSON(t, "POST", srv.URL+"/signin", map[string]string{
		"email":    "anna@example.com",
		"password": "wr0ngpassword@@",
	})
	if status != 400 {
		t.Errorf("status = %d, want 400", status)
	}
}

func TestTableLifecycle(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, "POST", srv.URL+"/tables", map[string]any{
		"id": 1, "number": 10, "places": 4, "isVip": false, "minOrder": 500,
	})
	if status != 200 {
		t.Fatalf("create status = %d, body = %v", status, body)
	}
	if body["id"] != float64(1) {
		t.Errorf("id = %v, want 1", body["id"])
	}

	status, body = doJSON(t, "GET", srv.URL+"/tables", nil)
	if status != 200 {
		t.Fatalf("list status = %d", status)
	}
	tables, _ := body["tables"].([]any)
	if len(tables) != 1 {
		t.Fatalf("tables = %v", body["tables"])
	}

	status, body = doJSON(t, "GET", srv.URL+"/tables/1", nil)
	if status != 200 {
		t.Fatalf("get status = %d", status)
	}
	if body["number"] != float64(10) || body["minOrder"] != float64(500) {
		t.Errorf("table = %v", body)
	}
}

func TestGetTableNotFound(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, "GET", srv.URL+"/tables/42", nil)
	if status != 404 {
		t.Fatalf("status = %d, want 404", status)
	}
	if body["message"] != "ERROR. Table 42 not found." {
		t.Errorf("message = %v", body["message"])
	}
}

func TestCreateTableMissingField(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, "POST", srv.URL+"/tables", map[string]any{
		"id": 1, "places": 4, "isVip": false,
	})
	if status != 400 {
		t.Fatalf("status = %d, want 400", status)
	}
	if body["message"] != "ERROR. Invalid table info." {
		t.Errorf("message = %v", body["message"])
	}
}

func TestReservationOverlapScenario(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, "POST", srv.URL+"/tables", map[string]any{
		"id": 1, "number": 10, "places": 4, "isVip": false,
	})

	reservation := func(start, end string) map[string]any {
		return map[string]any{
			"tableNumber":   10,
			"clientName":    "Anna Schmidt",
			"phoneNumber":   "+49170123456",
			"date":          "2024-06-01",
			"slotTimeStart": start,
			"slotTimeEnd":   end,
		}
	}

	status, body := doJSON(t, "POST", srv.URL+"/reservations", reservation("13:00", "15:00"))
	if status != 200 {
		t.Fatalf("first reservation status = %d, body = %v", status, body)
	}
	if id, _ := body["reservationId"].(string); id == "" {
		t.Fatal("expected a reservationId")
	}

	// Overlapping slot on the same table and date is rejected.
	status, body = doJSON(t, "POST", srv.URL+"/reservations", reservation("14:00", "16:00"))
	if status != 400 {
		t.Fatalf("overlap status = %d, want 400", status)
	}
	if body["message"] != "ERROR. Invalid reservation." {
		t.Errorf("message = %v", body["message"])
	}

	// The back-to-back follow-up slot is accepted.
	status, _ = doJSON(t, "POST", srv.URL+"/reservations", reservation("15:00", "16:00"))
	if status != 200 {
		t.Fatalf("back-to-back status = %d, want 200", status)
	}

	status, body = doJSON(t, "GET", srv.URL+"/reservations", nil)
	if status != 200 {
		t.Fatalf("list status = %d", status)
	}
	reservations, _ := body["reservations"].([]any)
	if len(reservations) != 2 {
		t.Fatalf("reservation count = %d, want 2", len(reservations))
	}
	// The list projection never exposes the internal id.
	if first, ok := reservations[0].(map[string]any); ok {
		if _, present := first["id"]; present {
			t.Error("list projection leaked the internal id")
		}
	}
}

func TestReservationUnknownTable(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, "POST", srv.URL+"/reservations", map[string]any{
		"tableNumber":   99,
		"clientName":    "Anna Schmidt",
		"phoneNumber":   "+49170123456",
		"date":          "2024-06-01",
		"slotTimeStart": "13:00",
		"slotTimeEnd":   "15:00",
	})
	if status != 400 {
		t.Fatalf("status = %d, want 400", status)
	}
	if body["message"] != "ERROR. Invalid reservation." {
		t.Errorf("message = %v", body["message"])
	}
}

func TestBadRouteEnvelope(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		method, path string
	}{
		{"PATCH", "/tables"},
		{"GET", "/nosuchroute"},
		{"DELETE", "/reservations"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			status, body := doJSON(t, tt.method, srv.URL+tt.path, nil)
			if status != 400 {
				t.Fatalf("status = %d, want 400", status)
			}
			want := fmt.Sprintf(
				"Bad request syntax or unsupported method. Request path: %s. HTTP method: %s",
				tt.path, tt.method)
			if body["message"] != want {
				t.Errorf("message = %v, want %q", body["message"], want)
			}
		})
	}
}

func TestHealthRoute(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, "GET", srv.URL+"/health", nil)
	if status != 200 {
		t.Fatalf("status = %d, want 200", status)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v", body["status"])
	}
}

func TestRequestIDEcho(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest("GET", srv.URL+"/hello", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("X-Request-ID", "req-123")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("X-Request-ID"); got != "req-123" {
		t.Errorf("X-Request-ID = %q, want req-123", got)
	}
}
