package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
)

var seq int64

// Helper function to generate unique values
func uniqueSuffix() int64 {
	return atomic.AddInt64(&seq, 1)
}

// Helper to create test patient
func createTestPatient(t *testing.T, name string) TestResponse {
	t.Helper()
	n := uniqueSuffix()

	resp := makeRequest(http.MethodPost, "/api/patients", map[string]interface{}{
		"name":   name,
		"age":    30 + n%50,
		"gender": "other",
		"phone":  fmt.Sprintf("119%08d", n),
		"email":  fmt.Sprintf("patient_%d@example.com", n),
	})

	if !resp.IsSuccess() {
		t.Fatalf("Failed to create test patient: %s %v", resp.Message, resp.Errors)
	}
	return resp
}

func decodeList(t *testing.T, raw string) []map[string]interface{} {
	t.Helper()
	var items []map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		t.Fatalf("Failed to decode list: %v (%s)", err, raw)
	}
	return items
}
