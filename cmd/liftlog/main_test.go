package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func newFakeAPI(t *testing.T, routes map[string]any) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	for pattern, payload := range routes {
		payload := payload
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(payload)
		})
	}
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestResolveCommandJSONOutput(t *testing.T) {
	server := newFakeAPI(t, map[string]any{
		"/api/resolve-exercise": map[string]any{
			"success":           true,
			"exercise_id":       "BP001",
			"exercise_name":     "Barbell Bench Press",
			"resolution_method": "llm_match",
			"confidence_score":  0.85,
			"candidates_count":  7,
			"user_input":        "bench press",
			"timestamp_iso":     "2026-01-01T00:00:00Z",
		},
	})

	output, err := runCommand(t, "--api", server.URL, "resolve", "bench", "press")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !strings.Contains(output, `"BP001"`) {
		t.Fatalf("output missing exercise id:\n%s", output)
	}
	if !strings.Contains(output, `"llm_match"`) {
		t.Fatalf("output missing resolution method:\n%s", output)
	}
}

func TestResolveCommandDaemonError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "query must not be empty"})
	}))
	t.Cleanup(server.Close)

	_, err := runCommand(t, "--api", server.URL, "resolve", " ")
	if err == nil {
		t.Fatal("expected error from daemon")
	}
	if !strings.Contains(err.Error(), "query must not be empty") {
		t.Fatalf("error = %v, want daemon message", err)
	}
}

func TestSearchCommand(t *testing.T) {
	server := newFakeAPI(t, map[string]any{
		"/api/exercises/search/": map[string]any{
			"success": true,
			"query":   "bench",
			"results": []map[string]any{
				{
					"exercise":         map[string]any{"exerciseId": "BP001", "name": "Barbell Bench Press"},
					"similarity_score": 0.95,
				},
			},
			"count": 1,
		},
	})

	output, err := runCommand(t, "--api", server.URL, "search", "bench")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(output, "BP001") {
		t.Fatalf("output missing result:\n%s", output)
	}
}

func TestHealthCommand(t *testing.T) {
	server := newFakeAPI(t, map[string]any{
		"/health": map[string]any{
			"status":    "healthy",
			"service":   "liftlog",
			"database":  "healthy",
			"exercises": 1500,
			"aliases":   120,
		},
	})

	output, err := runCommand(t, "--api", server.URL, "health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if !strings.Contains(output, "healthy") {
		t.Fatalf("output missing status:\n%s", output)
	}
}

func TestDBClearRequiresConfirmation(t *testing.T) {
	server := newFakeAPI(t, map[string]any{
		"/api/db/clear": map[string]any{"cleared": true},
	})

	_, err := runCommand(t, "--api", server.URL, "db", "clear")
	if err == nil || !strings.Contains(err.Error(), "--yes") {
		t.Fatalf("err = %v, want confirmation error", err)
	}

	output, err := runCommand(t, "--api", server.URL, "db", "clear", "--yes")
	if err != nil {
		t.Fatalf("db clear --yes: %v", err)
	}
	if !strings.Contains(output, "cleared") {
		t.Fatalf("output = %q, want cleared confirmation", output)
	}
}

func TestNormalizeBaseURL(t *testing.T) {
	cases := map[string]string{
		"127.0.0.1:7487":         "http://127.0.0.1:7487",
		"http://localhost:7487/": "http://localhost:7487",
		" 10.0.0.2:80 ":          "http://10.0.0.2:80",
	}
	for input, want := range cases {
		if got := normalizeBaseURL(input); got != want {
			t.Errorf("normalizeBaseURL(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestDisplayList(t *testing.T) {
	if got := displayList([]string{"barbell", "dumbbell"}); got != "Barbell, Dumbbell" {
		t.Fatalf("displayList = %q", got)
	}
	if got := displayList(nil); got != "-" {
		t.Fatalf("displayList(nil) = %q, want -", got)
	}
}
