package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"uren/internal/app/server"
	"uren/internal/platform/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   any             `json:"error"`
}

// TestRosterToPayoutJourney walks the whole surface against a real database:
// profiles, rules, an entry, rule activation and the calculated projections.
func TestRosterToPayoutJourney(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := config.Config{
		DatabaseURL:        dbURL,
		Environment:        "test",
		FrontendDir:        "frontend/dist",
		MigrationsDir:      "../../../../migrations",
		RunMigrations:      true,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 1000,
		CORSOrigins:        "*",
	}

	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	workerID := createProfile(t, client, ts.URL, "Journey Contractor", 40)
	recruiterID := createProfile(t, client, ts.URL, "Journey Recruiter", 0)

	ruleID := createRule(t, client, ts.URL, workerID, map[string]any{
		"basis":         "margin",
		"kind":          "fixed_amount",
		"value":         40,
		"beneficiaryId": recruiterID,
	})

	entryID := createEntry(t, client, ts.URL, workerID, 85, map[string]any{
		"start": "09:00",
		"stop":  "17:00",
	})
	setEntryRules(t, client, ts.URL, entryID, []string{ruleID})

	entries := calcEntries(t, client, ts.URL)
	found := false
	for _, fin := range entries {
		if fin["entryId"] == entryID {
			found = true
			assertNumber(t, fin, "hours", 8)
			assertNumber(t, fin, "billed", 680)
			assertNumber(t, fin, "grossMargin", 360)
			assertNumber(t, fin, "marginDeductions", 40)
			assertNumber(t, fin, "netMargin", 320)
		}
	}
	if !found {
		t.Fatalf("expected entry %s in calc output", entryID)
	}

	payouts := calcPayouts(t, client, ts.URL)
	if payouts[recruiterID] != 40 {
		t.Fatalf("expected recruiter payout 40, got %v", payouts[recruiterID])
	}
	if payouts[workerID] != 320 {
		t.Fatalf("expected worker payout 320, got %v", payouts[workerID])
	}

	// Deleting the rule must prune it from the entry's active set.
	doJSON(t, client, http.MethodDelete, ts.URL+"/api/v1/profiles/"+workerID+"/rules/"+ruleID, nil, http.StatusOK)
	entry := getEntry(t, client, ts.URL, entryID)
	if ids, ok := entry["activeRuleIds"].([]any); ok && len(ids) != 0 {
		t.Fatalf("expected active rule ids pruned, got %v", ids)
	}

	// Deleting the profile leaves the entry intact with its copied figures.
	doJSON(t, client, http.MethodDelete, ts.URL+"/api/v1/profiles/"+workerID, nil, http.StatusOK)
	entry = getEntry(t, client, ts.URL, entryID)
	if entry["name"] != "Journey Contractor" {
		t.Fatalf("expected entry to keep denormalized name, got %v", entry["name"])
	}

	resp, err := client.Get(ts.URL + "/api/v1/reports/payouts.csv")
	if err != nil {
		t.Fatalf("csv report failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected csv report 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(body, []byte("profile_id")) {
		t.Fatal("expected csv header in report")
	}

	doJSON(t, client, http.MethodDelete, ts.URL+"/api/v1/entries/"+entryID, nil, http.StatusOK)
	doJSON(t, client, http.MethodDelete, ts.URL+"/api/v1/profiles/"+recruiterID, nil, http.StatusOK)
}

func createProfile(t *testing.T, client *http.Client, baseURL, name string, rate float64) string {
	t.Helper()
	data := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/profiles/", map[string]any{
		"name":           name,
		"hourlyCostRate": rate,
	}, http.StatusCreated)
	return stringField(t, data, "id")
}

func createRule(t *testing.T, client *http.Client, baseURL, profileID string, payload map[string]any) string {
	t.Helper()
	data := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/profiles/"+profileID+"/rules", payload, http.StatusCreated)
	return stringField(t, data, "id")
}

func createEntry(t *testing.T, client *http.Client, baseURL, profileID string, clientRate float64, timeRecord map[string]any) string {
	t.Helper()
	data := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/entries/", map[string]any{
		"profileId":        profileID,
		"clientHourlyRate": clientRate,
		"time":             timeRecord,
	}, http.StatusCreated)
	return stringField(t, data, "id")
}

func setEntryRules(t *testing.T, client *http.Client, baseURL, entryID string, ruleIDs []string) {
	t.Helper()
	doJSON(t, client, http.MethodPut, baseURL+"/api/v1/entries/"+entryID+"/rules", map[string]any{
		"ruleIds": ruleIDs,
	}, http.StatusOK)
}

func getEntry(t *testing.T, client *http.Client, baseURL, entryID string) map[string]any {
	t.Helper()
	return doJSON(t, client, http.MethodGet, baseURL+"/api/v1/entries/"+entryID, nil, http.StatusOK)
}

func calcEntries(t *testing.T, client *http.Client, baseURL string) []map[string]any {
	t.Helper()
	raw := doRaw(t, client, http.MethodGet, baseURL+"/api/v1/calc/entries", nil, http.StatusOK)
	var entries []map[string]any
	if err := json.Unmarshal(raw, &entries); err != nil {
		t.Fatalf("decode calc entries: %v", err)
	}
	return entries
}

func calcPayouts(t *testing.T, client *http.Client, baseURL string) map[string]float64 {
	t.Helper()
	raw := doRaw(t, client, http.MethodGet, baseURL+"/api/v1/calc/payouts", nil, http.StatusOK)
	var payouts []struct {
		ProfileID string  `json:"profileId"`
		Total     float64 `json:"total"`
	}
	if err := json.Unmarshal(raw, &payouts); err != nil {
		t.Fatalf("decode calc payouts: %v", err)
	}
	out := map[string]float64{}
	for _, p := range payouts {
		out[p.ProfileID] = p.Total
	}
	return out
}

func doJSON(t *testing.T, client *http.Client, method, url string, payload map[string]any, wantStatus int) map[string]any {
	t.Helper()
	raw := doRaw(t, client, method, url, payload, wantStatus)
	if len(raw) == 0 {
		return nil
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("%s %s: decode data: %v", method, url, err)
	}
	return data
}

func doRaw(t *testing.T, client *http.Client, method, url string, payload map[string]any, wantStatus int) json.RawMessage {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected %d, got %d: %s", method, url, wantStatus, resp.StatusCode, raw)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("%s %s: decode envelope: %v", method, url, err)
	}
	return env.Data
}

func stringField(t *testing.T, data map[string]any, field string) string {
	t.Helper()
	value, ok := data[field].(string)
	if !ok || value == "" {
		t.Fatalf("expected string field %q in %v", field, data)
	}
	return value
}

func assertNumber(t *testing.T, data map[string]any, field string, want float64) {
	t.Helper()
	value, ok := data[field].(float64)
	if !ok {
		t.Fatalf("expected numeric field %q in %v", field, data)
	}
	if diff := value - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("field %q: expected %v, got %v", field, want, value)
	}
}
