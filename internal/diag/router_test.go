package diag

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHealth_ReturnsOK(t *testing.T) {
	router := NewRouter("1.2.3")
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Status != "healthy" {
		t.Errorf("Expected status 'healthy', got '%s'", resp.Status)
	}

	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected Data to be a map, got %T", resp.Data)
	}

	if data["service"] != "r2d2" {
		t.Errorf("Expected service 'r2d2', got '%s'", data["service"])
	}

	if data["version"] != "1.2.3" {
		t.Errorf("Expected version '1.2.3', got '%s'", data["version"])
	}
}

func TestMetrics_ReturnsPrometheusText(t *testing.T) {
	router := NewRouter("dev")
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	// The default registry always carries the Go runtime collectors
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Errorf("Expected metrics output to contain go_goroutines")
	}
}

func TestRoot_RedirectsToHealth(t *testing.T) {
	router := NewRouter("dev")
	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusTemporaryRedirect {
		t.Errorf("Expected status %d, got %d", http.StatusTemporaryRedirect, w.Code)
	}

	if loc := w.Header().Get("Location"); loc != "/health" {
		t.Errorf("Expected redirect to /health, got '%s'", loc)
	}
}
