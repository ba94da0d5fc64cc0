package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// testServer holds the base URL of a running lavue server for tests.
var testServer string

func init() {
	testServer = os.Getenv("LAVUE_URL")
	if testServer == "" {
		testServer = "http://localhost:8790"
	}
	// Ensure the URL has a scheme.
	if !strings.HasPrefix(testServer, "http://") && !strings.HasPrefix(testServer, "https://") {
		testServer = "http://" + testServer
	}
}

var client = &http.Client{Timeout: 10 * time.Second}

// requireServer skips the test unless a lavue server answers /healthz.
func requireServer(t *testing.T) {
	t.Helper()
	resp, err := client.Get(strings.TrimRight(testServer, "/") + "/healthz")
	if err != nil {
		t.Skipf("lavue server not reachable at %s: %v", testServer, err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Skipf("lavue server at %s is unhealthy: %d", testServer, resp.StatusCode)
	}
}

// loadProgram reads a lavue program from the testdata directory.
func loadProgram(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join("testdata", "programs", name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load program %s: %v", name, err)
	}
	return string(data)
}

// apiURL builds a full URL for the given API path.
func apiURL(path string) string {
	return strings.TrimRight(testServer, "/") + "/v1/" + path
}

// parseResult is the decoded body of POST /v1/parse.
type parseResult struct {
	Units []struct {
		Kind  string `json:"kind"`
		Name  string `json:"name"`
		Proto *struct {
			Name string `json:"name"`
		} `json:"proto"`
	} `json:"units"`
	Errors []struct {
		Message string `json:"message"`
		Kind    string `json:"kind"`
	} `json:"errors"`
	Summary map[string]int `json:"summary"`
}

// postJSON sends body to path and returns the status code and raw response.
func postJSON(t *testing.T, path string, body interface{}) (int, []byte) {
	t.Helper()
	data, _ := json.Marshal(body)
	resp, err := client.Post(apiURL(path), "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("HTTP error: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, raw
}

// parseSource submits src to the running server and decodes the result.
func parseSource(t *testing.T, src string, resolve bool) parseResult {
	t.Helper()
	code, raw := postJSON(t, "parse", map[string]interface{}{"source": src, "resolve": resolve})
	if code != http.StatusOK {
		t.Fatalf("parse failed with status %d: %s", code, raw)
	}
	var result parseResult
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("parse decode error: %v", err)
	}
	return result
}
