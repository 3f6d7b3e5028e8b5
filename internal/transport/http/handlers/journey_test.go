package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"timeoff/internal/app/server"
	"timeoff/internal/platform/config"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error any             `json:"error"`
}

func testConfig(dbURL string) config.Config {
	return config.Config{
		DatabaseURL:        dbURL,
		JWTSecret:          "test-secret",
		DataEncryptionKey:  "0123456789abcdef0123456789abcdef",
		Environment:        "test",
		MigrationsDir:      "../../../../migrations",
		SessionTTL:         time.Hour,
		SeedAdminUsername:  "admin",
		SeedAdminEmail:     "admin@test.local",
		SeedAdminPassword:  "ChangeMe123!",
		RunMigrations:      true,
		RunSeed:            true,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 1000,
	}
}

func TestTimeOffRequestJourney(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	app, err := server.New(context.Background(), testConfig(dbURL))
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	username := fmt.Sprintf("journey-%d", time.Now().UnixNano())
	employeeToken := register(t, client, ts.URL, username)
	adminToken := login(t, client, ts.URL, "admin", "ChangeMe123!")

	// Mixed-case type values are normalized before they hit the ledger.
	requestID := submitRequest(t, client, ts.URL, employeeToken, "Vacation", "2026-09-07", "2026-09-11")

	pending := listRequests(t, client, ts.URL+"/api/v1/requests/review", adminToken)
	if !containsRequest(pending, requestID) {
		t.Fatal("expected the new request in the review queue")
	}

	resp := postJSON(t, client, ts.URL+"/api/v1/requests/"+requestID+"/approve", adminToken, nil)
	var decision map[string]any
	if err := json.Unmarshal(resp.Data, &decision); err != nil {
		t.Fatalf("failed to decode approve response: %v", err)
	}
	if status, _ := decision["status"].(string); status != "approved" {
		t.Fatalf("expected status approved, got %v", decision["status"])
	}

	// A second decision on the same request must conflict, never overwrite.
	postJSONStatus(t, client, ts.URL+"/api/v1/requests/"+requestID+"/reject", adminToken, nil, http.StatusConflict)

	// Garbage ids are not found, not server errors.
	postJSONStatus(t, client, ts.URL+"/api/v1/requests/not-a-uuid/approve", adminToken, nil, http.StatusNotFound)

	history := listRequests(t, client, ts.URL+"/api/v1/requests/history", employeeToken)
	approved := findRequest(history, requestID)
	if approved == nil {
		t.Fatal("expected the approved request in history")
	}
	if approved["status"] != "approved" {
		t.Fatalf("expected approved in history, got %v", approved["status"])
	}
	if approved["type"] != "vacation" {
		t.Fatalf("expected normalized type vacation, got %v", approved["type"])
	}
	if reviewedBy, _ := approved["reviewedBy"].(string); reviewedBy == "" {
		t.Fatal("expected reviewedBy to be recorded")
	}
	if comment, _ := approved["reviewComment"].(string); comment != "" {
		t.Fatalf("review must not write a comment, got %q", comment)
	}

	pending = listRequests(t, client, ts.URL+"/api/v1/requests/review", adminToken)
	if containsRequest(pending, requestID) {
		t.Fatal("decided request must leave the review queue")
	}
}

func TestEmployeePermissionBoundaries(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	app, err := server.New(context.Background(), testConfig(dbURL))
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	username := fmt.Sprintf("boundary-%d", time.Now().UnixNano())
	employeeToken := register(t, client, ts.URL, username)

	otherUsername := fmt.Sprintf("boundary-other-%d", time.Now().UnixNano())
	otherToken := register(t, client, ts.URL, otherUsername)
	requestID := submitRequest(t, client, ts.URL, otherToken, "sick", "2026-10-01", "2026-10-02")

	// Employees cannot review, manage holidays or read reports.
	postJSONStatus(t, client, ts.URL+"/api/v1/requests/"+requestID+"/approve", employeeToken, nil, http.StatusForbidden)
	getJSONStatus(t, client, ts.URL+"/api/v1/requests/review", employeeToken, http.StatusForbidden)
	postJSONStatus(t, client, ts.URL+"/api/v1/holidays", employeeToken, map[string]any{
		"name": "Sneaky Day",
		"date": "2026-12-24",
	}, http.StatusForbidden)
	getJSONStatus(t, client, ts.URL+"/api/v1/reports/work-data", employeeToken, http.StatusForbidden)

	// Anonymous callers get 401 before any permission check runs.
	getJSONStatus(t, client, ts.URL+"/api/v1/dashboard", "", http.StatusUnauthorized)
}

func TestHolidayCalendarFiltering(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	app, err := server.New(context.Background(), testConfig(dbURL))
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	adminToken := login(t, client, ts.URL, "admin", "ChangeMe123!")
	suffix := time.Now().UnixNano()

	addHoliday(t, client, ts.URL, adminToken, "UK", "London", fmt.Sprintf("London Day %d", suffix), "2026-05-04")
	addHoliday(t, client, ts.URL, adminToken, "UK", "ALL", fmt.Sprintf("UK Day %d", suffix), "2026-05-25")
	addHoliday(t, client, ts.URL, adminToken, "USA", "Austin", fmt.Sprintf("Austin Day %d", suffix), "2026-03-02")

	resp := getJSON(t, client, ts.URL+"/api/v1/holidays?country=UK&location=London", adminToken)
	var listing struct {
		Holidays []map[string]any `json:"holidays"`
		Country  string           `json:"selectedCountry"`
		Location string           `json:"selectedLocation"`
	}
	if err := json.Unmarshal(resp.Data, &listing); err != nil {
		t.Fatalf("failed to decode holidays response: %v", err)
	}
	if listing.Country != "UK" || listing.Location != "London" {
		t.Fatalf("expected echoed filters, got %s/%s", listing.Country, listing.Location)
	}

	var sawLocal, sawWildcard bool
	for _, h := range listing.Holidays {
		name, _ := h["name"].(string)
		switch name {
		case fmt.Sprintf("London Day %d", suffix):
			sawLocal = true
		case fmt.Sprintf("UK Day %d", suffix):
			sawWildcard = true
		case fmt.Sprintf("Austin Day %d", suffix):
			t.Fatal("USA holiday must not appear in a UK listing")
		}
	}
	if !sawLocal || !sawWildcard {
		t.Fatal("expected both the local and the ALL-location holiday")
	}
}

func TestWorkDataReportValues(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	app, err := server.New(context.Background(), testConfig(dbURL))
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	adminToken := login(t, client, ts.URL, "admin", "ChangeMe123!")
	username := fmt.Sprintf("report-%d", time.Now().UnixNano())
	employeeToken := register(t, client, ts.URL, username)

	for _, tc := range []struct {
		kind, start, end string
	}{
		{"vacation", "2026-06-01", "2026-06-05"},
		{"vacation", "2026-07-06", "2026-07-10"},
		{"sick", "2026-08-03", "2026-08-03"},
	} {
		id := submitRequest(t, client, ts.URL, employeeToken, tc.kind, tc.start, tc.end)
		postJSON(t, client, ts.URL+"/api/v1/requests/"+id+"/approve", adminToken, nil)
	}

	// A pending request must not count toward the report.
	submitRequest(t, client, ts.URL, employeeToken, "vacation", "2026-11-02", "2026-11-06")

	resp := getJSON(t, client, ts.URL+"/api/v1/reports/work-data", adminToken)
	var rows []map[string]any
	if err := json.Unmarshal(resp.Data, &rows); err != nil {
		t.Fatalf("failed to decode report response: %v", err)
	}

	var row map[string]any
	for _, candidate := range rows {
		if name, _ := candidate["name"].(string); name == username+" Tester" {
			row = candidate
			break
		}
	}
	if row == nil {
		t.Fatalf("expected a report row for %s", username)
	}

	checks := map[string]float64{
		"holidayDays": 4,
		"leaveDays":   2,
		"workDays":    14,
		"workHours":   112,
	}
	for field, want := range checks {
		if got, _ := row[field].(float64); got != want {
			t.Fatalf("expected %s=%v, got %v", field, want, row[field])
		}
	}
}

func TestWorkDataPDFDownload(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	app, err := server.New(context.Background(), testConfig(dbURL))
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	adminToken := login(t, client, ts.URL, "admin", "ChangeMe123!")

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/reports/work-data/pdf", nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("expected application/pdf, got %s", ct)
	}
	wantName := "work_data_report_" + time.Now().Format("20060102") + ".pdf"
	if cd := resp.Header.Get("Content-Disposition"); cd != `attachment; filename="`+wantName+`"` {
		t.Fatalf("unexpected content disposition %q", cd)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if !bytes.HasPrefix(raw, []byte("%PDF")) {
		t.Fatal("expected a PDF payload")
	}
}

func register(t *testing.T, client *http.Client, baseURL, username string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/auth/register", "", map[string]any{
		"username":        username,
		"email":           username + "@example.com",
		"firstName":       username,
		"lastName":        "Tester",
		"location":        "Boston",
		"password":        "Password123!",
		"passwordConfirm": "Password123!",
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode register response: %v", err)
	}
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("expected token")
	}
	return token
}

func login(t *testing.T, client *http.Client, baseURL, username, password string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/auth/login", "", map[string]any{
		"username": username,
		"password": password,
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("expected token")
	}
	return token
}

func submitRequest(t *testing.T, client *http.Client, baseURL, token, kind, start, end string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/requests", token, map[string]any{
		"type":      kind,
		"startDate": start,
		"endDate":   end,
		"reason":    "Time off",
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode submit response: %v", err)
	}
	id, _ := payload["id"].(string)
	if id == "" {
		t.Fatal("expected request id")
	}
	return id
}

func addHoliday(t *testing.T, client *http.Client, baseURL, token, country, location, name, date string) {
	t.Helper()
	postJSON(t, client, baseURL+"/api/v1/holidays", token, map[string]any{
		"country":  country,
		"location": location,
		"name":     name,
		"date":     date,
	})
}

func listRequests(t *testing.T, client *http.Client, url, token string) []map[string]any {
	t.Helper()
	resp := getJSON(t, client, url, token)
	var payload []map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode request list: %v", err)
	}
	return payload
}

func containsRequest(list []map[string]any, id string) bool {
	return findRequest(list, id) != nil
}

func findRequest(list []map[string]any, id string) map[string]any {
	for _, item := range list {
		if item["id"] == id {
			return item
		}
	}
	return nil
}

func postJSON(t *testing.T, client *http.Client, url, token string, body any) envelope {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequest(http.MethodPost, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.StatusCode >= 400 {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	return env
}

func postJSONStatus(t *testing.T, client *http.Client, url, token string, body any, want int) envelope {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequest(http.MethodPost, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if resp.StatusCode != want {
		t.Fatalf("expected status %d, got %d: %s", want, resp.StatusCode, string(raw))
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}

func getJSON(t *testing.T, client *http.Client, url, token string) envelope {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.StatusCode >= 400 {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	return env
}

func getJSONStatus(t *testing.T, client *http.Client, url, token string, want int) envelope {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if resp.StatusCode != want {
		t.Fatalf("expected status %d, got %d: %s", want, resp.StatusCode, string(raw))
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}
