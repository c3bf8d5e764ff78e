package integration

import (
	"net/http"
	"strings"
	"testing"

	"github.com/rhuss/buchung/pkg/api"
)

func createTable(t *testing.T, table map[string]any) int {
	t.Helper()
	resp := postJSON(t, testEnv.BaseURL()+"/tables", table)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create table got %d: %s", resp.StatusCode, readBody(t, resp))
	}

	var created struct {
		ID int `json:"id"`
	}
	decodeJSON(t, resp, &created)
	return created.ID
}

func TestTableLifecycle(t *testing.T) {
	id := createTable(t, map[string]any{
		"id":       101,
		"number":   11,
		"places":   6,
		"isVip":    true,
		"minOrder": 500,
	})
	if id != 101 {
		t.Errorf("created id = %d, want 101", id)
	}

	resp := getURL(t, testEnv.BaseURL()+"/tables/101")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get table got %d: %s", resp.StatusCode, readBody(t, resp))
	}

	var table api.Table
	decodeJSON(t, resp, &table)
	if table.Number != 11 || table.Places != 6 || !table.IsVip {
		t.Errorf("table = %+v", table)
	}
	if table.MinOrder == nil || *table.MinOrder != 500 {
		t.Errorf("minOrder = %v, want 500", table.MinOrder)
	}

	listResp := getURL(t, testEnv.BaseURL()+"/tables")
	defer listResp.Body.Close()

	var list api.TableList
	decodeJSON(t, listResp, &list)
	found := false
	for _, tbl := range list.Tables {
		if tbl.ID == 101 {
			found = true
		}
	}
	if !found {
		t.Error("created table missing from list")
	}
}

func TestGetUnknownTable(t *testing.T) {
	resp := getURL(t, testEnv.BaseURL()+"/tables/9999")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	var env api.ErrorEnvelope
	decodeJSON(t, resp, &env)
	if env.Message != "ERROR. Table 9999 not found." {
		t.Errorf("message = %q", env.Message)
	}
}

func TestCreateTableMissingField(t *testing.T) {
	resp := postJSON(t, testEnv.BaseURL()+"/tables", map[string]any{
		"id":     102,
		"number": 12,
		// places missing
		"isVip": false,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var env api.ErrorEnvelope
	decodeJSON(t, resp, &env)
	if env.Message != "ERROR. Invalid table info." {
		t.Errorf("message = %q", env.Message)
	}
}

func TestGetTableNonNumericID(t *testing.T) {
	resp := getURL(t, testEnv.BaseURL()+"/tables/abc")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Invalid table info") {
		t.Errorf("body = %q", body)
	}
}
