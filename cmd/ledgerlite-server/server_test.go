package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ledgerlite/ledgerlite"
	"github.com/ledgerlite/ledgerlite/db"
	"github.com/ledgerlite/ledgerlite/ledger"
)

func setupTestServer(t *testing.T, auth *AuthConfig) *httptest.Server {
	t.Helper()

	instance := ledgerlite.Open(ledger.NewMemoryLog())
	server := NewServer(instance, auth)

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(func() {
		ts.Close()
		instance.Close()
	})
	return ts
}

func postQuery(t *testing.T, ts *httptest.Server, query string) Response {
	t.Helper()

	body, _ := json.Marshal(QueryRequest{SQL: query})
	resp, err := http.Post(ts.URL+"/api/query", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to post query: %v", err)
	}
	defer resp.Body.Close()

	var decoded Response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	return decoded
}

func TestServerCreateInsertSelect(t *testing.T) {
	ts := setupTestServer(t, nil)

	resp := postQuery(t, ts, "CREATE TABLE users (id INT PRIMARY KEY, name TEXT)")
	if !resp.Success {
		t.Fatalf("Failed to create table: %s", resp.Error)
	}
	if resp.Type != "schema" {
		t.Errorf("Expected schema type, got: %s", resp.Type)
	}

	resp = postQuery(t, ts, "INSERT INTO users VALUES (1, 'Alice')")
	if !resp.Success {
		t.Fatalf("Failed to insert: %s", resp.Error)
	}
	var ac db.AffectedCount
	if err := json.Unmarshal(resp.Result, &ac); err != nil {
		t.Fatalf("Failed to parse affected result: %v", err)
	}
	if ac.Count != 1 {
		t.Errorf("Expected 1 affected row, got: %d", ac.Count)
	}

	resp = postQuery(t, ts, "SELECT * FROM users")
	if !resp.Success {
		t.Fatalf("Failed to select: %s", resp.Error)
	}
	if resp.Type != "rows" {
		t.Errorf("Expected rows type, got: %s", resp.Type)
	}
	var rs db.RowSet
	if err := json.Unmarshal(resp.Result, &rs); err != nil {
		t.Fatalf("Failed to parse row set: %v", err)
	}
	if len(rs.Rows) != 1 {
		t.Fatalf("Expected 1 row, got: %d", len(rs.Rows))
	}
	if rs.Rows[0]["name"] != "Alice" {
		t.Errorf("Unexpected row: %v", rs.Rows[0])
	}
}

func TestResultTypeNames(t *testing.T) {
	tests := []struct {
		resultType db.ResultType
		expected   string
	}{
		{db.RowSetResultType, "rows"},
		{db.AffectedCountResultType, "affected"},
		{db.SchemaAckResultType, "schema"},
		{db.ResultType(99), "unknown"},
	}

	for _, test := range tests {
		if got := resultTypeName(test.resultType); got != test.expected {
			t.Errorf("resultTypeName(%v) = %q, expected %q", test.resultType, got, test.expected)
		}
	}
}

func TestServerQueryError(t *testing.T) {
	ts := setupTestServer(t, nil)

	resp := postQuery(t, ts, "SELECT * FROM nonexistent")
	if resp.Success {
		t.Error("Expected failure for unknown table")
	}
	if resp.Error == "" {
		t.Error("Expected error message")
	}

	resp = postQuery(t, ts, "SELEKT * FROM users")
	if resp.Success {
		t.Error("Expected failure for syntax error")
	}
}

func TestServerRejectsEmptyBody(t *testing.T) {
	ts := setupTestServer(t, nil)

	resp, err := http.Post(ts.URL+"/api/query", "application/json", bytes.NewReader([]byte("{}")))
	if err != nil {
		t.Fatalf("Failed to post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got: %d", resp.StatusCode)
	}
}

func TestServerTables(t *testing.T) {
	ts := setupTestServer(t, nil)
	postQuery(t, ts, "CREATE TABLE users (id INT PRIMARY KEY)")
	postQuery(t, ts, "CREATE TABLE orders (id INT PRIMARY KEY)")

	resp, err := http.Get(ts.URL + "/api/tables")
	if err != nil {
		t.Fatalf("Failed to get tables: %v", err)
	}
	defer resp.Body.Close()

	var tr TablesResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		t.Fatalf("Failed to parse tables: %v", err)
	}
	if len(tr.Tables) != 2 || tr.Tables[0] != "orders" || tr.Tables[1] != "users" {
		t.Errorf("Unexpected table list: %v", tr.Tables)
	}
}

func TestServerTableDetail(t *testing.T) {
	ts := setupTestServer(t, nil)
	postQuery(t, ts, "CREATE TABLE users (id INT PRIMARY KEY, name TEXT)")
	postQuery(t, ts, "INSERT INTO users VALUES (1, 'Alice')")

	resp, err := http.Get(ts.URL + "/api/tables/users")
	if err != nil {
		t.Fatalf("Failed to get table: %v", err)
	}
	defer resp.Body.Close()

	var tr TableResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		t.Fatalf("Failed to parse table: %v", err)
	}
	if tr.Name != "users" {
		t.Errorf("Expected users, got: %s", tr.Name)
	}
	if len(tr.Columns) != 2 || !tr.Columns[0].PrimaryKey {
		t.Errorf("Unexpected columns: %v", tr.Columns)
	}
	if len(tr.Rows) != 1 || tr.Rows[0]["name"] != "Alice" {
		t.Errorf("Unexpected rows: %v", tr.Rows)
	}
}

func TestServerTableNotFound(t *testing.T) {
	ts := setupTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/api/tables/missing")
	if err != nil {
		t.Fatalf("Failed to get table: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got: %d", resp.StatusCode)
	}
}

func TestServerHistory(t *testing.T) {
	ts := setupTestServer(t, nil)
	postQuery(t, ts, "CREATE TABLE users (id INT PRIMARY KEY)")
	postQuery(t, ts, "INSERT INTO users VALUES (1)")
	postQuery(t, ts, "INSERT INTO users VALUES (2)")
	postQuery(t, ts, "DELETE FROM users WHERE id = 1")

	resp, err := http.Get(ts.URL + "/api/history?offset=1&limit=1")
	if err != nil {
		t.Fatalf("Failed to get history: %v", err)
	}
	defer resp.Body.Close()

	var hr HistoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&hr); err != nil {
		t.Fatalf("Failed to parse history: %v", err)
	}
	if hr.Total != 3 {
		t.Errorf("Expected 3 total entries, got: %d", hr.Total)
	}
	if len(hr.Entries) != 1 || hr.Entries[0].TransactionID != 2 {
		t.Errorf("Unexpected history page: %v", hr.Entries)
	}
}

func TestServerHistoryRejectsBadOffset(t *testing.T) {
	ts := setupTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/api/history?offset=nope")
	if err != nil {
		t.Fatalf("Failed to get history: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got: %d", resp.StatusCode)
	}
}

// createTestJWT creates a signed token for auth tests.
func createTestJWT(t *testing.T, secret, issuer string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": issuer,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("Failed to create test JWT: %v", err)
	}
	return signed
}

func queryWithToken(t *testing.T, ts *httptest.Server, token string) *http.Response {
	t.Helper()

	body, _ := json.Marshal(QueryRequest{SQL: "CREATE TABLE t (id INT PRIMARY KEY)"})
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/query", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}

func TestAuthRequired(t *testing.T) {
	ts := setupTestServer(t, &AuthConfig{Enabled: true, Secret: "test-secret"})

	resp := queryWithToken(t, ts, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got: %d", resp.StatusCode)
	}
}

func TestAuthWithValidJWT(t *testing.T) {
	secret := "test-secret"
	ts := setupTestServer(t, &AuthConfig{Enabled: true, Secret: secret})

	resp := queryWithToken(t, ts, createTestJWT(t, secret, ""))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 with valid token, got: %d", resp.StatusCode)
	}
}

func TestAuthWithInvalidJWT(t *testing.T) {
	ts := setupTestServer(t, &AuthConfig{Enabled: true, Secret: "test-secret"})

	resp := queryWithToken(t, ts, createTestJWT(t, "wrong-secret", ""))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 with bad signature, got: %d", resp.StatusCode)
	}
}

func TestAuthValidatesIssuer(t *testing.T) {
	secret := "test-secret"
	ts := setupTestServer(t, &AuthConfig{
		Enabled: true,
		Secret:  secret,
		Issuer:  "https://auth.example.com",
	})

	resp := queryWithToken(t, ts, createTestJWT(t, secret, "https://other.example.com"))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 with wrong issuer, got: %d", resp.StatusCode)
	}

	resp = queryWithToken(t, ts, createTestJWT(t, secret, "https://auth.example.com"))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 with correct issuer, got: %d", resp.StatusCode)
	}
}
