package integration

import (
	"net/http"
	"testing"

	"github.com/rhuss/buchung/pkg/api"
)

func reserve(t *testing.T, res map[string]any) *http.Response {
	t.Helper()
	return postJSON(t, testEnv.BaseURL()+"/reservations", res)
}

func TestReservationOverlapRules(t *testing.T) {
	createTable(t, map[string]any{
		"id": 201, "number": 21, "places": 4, "isVip": false,
	})

	base := map[string]any{
		"tableNumber": 21,
		"clientName":  "Anna Schmidt",
		"phoneNumber": "+49301234567",
		"date":        "2026-09-05",
	}

	first := map[string]any{"slotTimeStart": "13:00", "slotTimeEnd": "15:00"}
	for k, v := range base {
		first[k] = v
	}
	resp := reserve(t, first)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first reservation got %d: %s", resp.StatusCode, readBody(t, resp))
	}
	var created struct {
		ReservationID string `json:"reservationId"`
	}
	decodeJSON(t, resp, &created)
	if created.ReservationID == "" {
		t.Fatal("reservationId is empty")
	}

	// Overlapping slot on the same table and date is rejected.
	overlap := map[string]any{"slotTimeStart": "14:00", "slotTimeEnd": "16:00"}
	for k, v := range base {
		overlap[k] = v
	}
	resp = reserve(t, overlap)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("overlap got %d, want 400", resp.StatusCode)
	}
	var env api.ErrorEnvelope
	decodeJSON(t, resp, &env)
	if env.Message != "ERROR. Invalid reservation." {
		t.Errorf("message = %q", env.Message)
	}

	// A back-to-back slot starting at the previous end is fine.
	adjacent := map[string]any{"slotTimeStart": "15:00", "slotTimeEnd": "16:00"}
	for k, v := range base {
		adjacent[k] = v
	}
	resp = reserve(t, adjacent)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("adjacent reservation got %d: %s", resp.StatusCode, readBody(t, resp))
	}
	resp.Body.Close()

	// Both reservations are listed, without internal ids.
	listResp := getURL(t, testEnv.BaseURL()+"/reservations")
	var list api.ReservationList
	decodeJSON(t, listResp, &list)

	count := 0
	for _, r := range list.Reservations {
		if r.Date == "2026-09-05" && r.TableNumber == 21 {
			count++
		}
	}
	if count != 2 {
		t.Errorf("reservations for table 21 on 2026-09-05 = %d, want 2", count)
	}
}

func TestReservationUnknownTable(t *testing.T) {
	resp := reserve(t, map[string]any{
		"tableNumber":   999,
		"clientName":    "Anna Schmidt",
		"phoneNumber":   "+49301234567",
		"date":          "2026-09-05",
		"slotTimeStart": "13:00",
		"slotTimeEnd":   "15:00",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var env api.ErrorEnvelope
	decodeJSON(t, resp, &env)
	if env.Message != "ERROR. Invalid reservation." {
		t.Errorf("message = %q", env.Message)
	}
}

func TestReservationMissingFields(t *testing.T) {
	resp := reserve(t, map[string]any{
		"tableNumber": 21,
		"date":        "2026-09-05",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}
