package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/dfreire/gridmaze/game/config"
	"github.com/dfreire/gridmaze/game/service"
	"github.com/dfreire/gridmaze/game/session"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()

	levels := map[string]string{
		"corridor.json": `{"rows": 1, "cols": 3, "explorer": [0, 0], "exit": [0, 2]}`,
		"walled.json":   `{"rows": 1, "cols": 2, "explorer": [0, 0], "exit": [0, 1], "v_walls": [[false, true, false]]}`,
	}
	for name, content := range levels {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write level file: %v", err)
		}
	}

	levelMgr, err := config.NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create level manager: %v", err)
	}
	svc := service.NewGameService(session.NewManager(nil), levelMgr)

	ts := httptest.NewServer(NewServer(svc, nil, nil))
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body interface{}, out interface{}) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func createSession(t *testing.T, ts *httptest.Server, level string) *service.SessionInfo {
	t.Helper()
	var info service.SessionInfo
	status := doJSON(t, "POST", ts.URL+"/api/sessions", map[string]string{"level": level}, &info)
	if status != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", status)
	}
	return &info
}

func TestCreateAndGetSession(t *testing.T) {
	ts := newTestServer(t)

	info := createSession(t, ts, "corridor")
	if info.ID == "" || info.LevelName != "corridor" || info.Phase != "explorer" {
		t.Errorf("Unexpected session: %+v", info)
	}

	var got service.SessionInfo
	status := doJSON(t, "GET", ts.URL+"/api/sessions/"+info.ID, nil, &got)
	if status != http.StatusOK || got.ID != info.ID {
		t.Errorf("Expected the session back, got %d %+v", status, got)
	}

	if status := doJSON(t, "GET", ts.URL+"/api/sessions/ghost", nil, nil); status != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown session, got %d", status)
	}
}

func TestCreateSessionUnknownLevel(t *testing.T) {
	ts := newTestServer(t)

	status := doJSON(t, "POST", ts.URL+"/api/sessions", map[string]string{"level": "missing"}, nil)
	if status != http.StatusInternalServerError {
		t.Errorf("Expected 500 for unknown level, got %d", status)
	}
}

func TestStepEndpoint(t *testing.T) {
	ts := newTestServer(t)
	info := createSession(t, ts, "corridor")

	var out service.StepOutcome
	status := doJSON(t, "POST", ts.URL+"/api/sessions/"+info.ID+"/step",
		map[string]string{"action": "RIGHT"}, &out)
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	if !out.Result.OK || !out.Result.Moved || out.State.Explorer.Col != 1 {
		t.Errorf("Unexpected step outcome: %+v", out)
	}

	// A rejected action still returns 200 with OK=false in the result.
	status = doJSON(t, "POST", ts.URL+"/api/sessions/"+info.ID+"/step",
		map[string]string{"action": "JUMP"}, &out)
	if status != http.StatusOK || out.Result.OK || out.Result.Reason != "invalid_action" {
		t.Errorf("Expected rejected step, got %d %+v", status, out.Result)
	}

	status = doJSON(t, "POST", ts.URL+"/api/sessions/ghost/step",
		map[string]string{"action": "UP"}, nil)
	if status != http.StatusInternalServerError {
		t.Errorf("Expected 500 for unknown session, got %d", status)
	}
}

func TestMicroStepEndpoint(t *testing.T) {
	ts := newTestServer(t)
	info := createSession(t, ts, "corridor")

	var out service.PhaseOutcome
	status := doJSON(t, "POST", ts.URL+"/api/sessions/"+info.ID+"/microstep",
		map[string]string{"action": "RIGHT"}, &out)
	if status != http.StatusOK || !out.Result.OK || out.Result.Phase != "explorer" {
		t.Errorf("Unexpected microstep outcome: %d %+v", status, out.Result)
	}

	status = doJSON(t, "POST", ts.URL+"/api/sessions/"+info.ID+"/microstep",
		map[string]string{}, &out)
	if status != http.StatusOK || out.Result.Phase != "fast_pursuers_1" {
		t.Errorf("Expected the first pursuer phase, got %d %+v", status, out.Result)
	}
}

func TestStateEndpoint(t *testing.T) {
	ts := newTestServer(t)
	info := createSession(t, ts, "corridor")

	doJSON(t, "POST", ts.URL+"/api/sessions/"+info.ID+"/step",
		map[string]string{"action": "RIGHT"}, nil)

	var got service.SessionInfo
	status := doJSON(t, "GET", ts.URL+"/api/sessions/"+info.ID+"/state", nil, &got)
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	if got.Turns != 1 || got.State.Explorer.Col != 1 {
		t.Errorf("Unexpected state: %+v", got)
	}
}

func TestDeleteSession(t *testing.T) {
	ts := newTestServer(t)
	info := createSession(t, ts, "corridor")

	if status := doJSON(t, "DELETE", ts.URL+"/api/sessions/"+info.ID, nil, nil); status != http.StatusOK {
		t.Errorf("Expected 200, got %d", status)
	}
	if status := doJSON(t, "GET", ts.URL+"/api/sessions/"+info.ID, nil, nil); status != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", status)
	}
}

func TestListSessionsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	createSession(t, ts, "corridor")
	createSession(t, ts, "corridor")

	var out struct {
		Count    int                    `json:"count"`
		Sessions []*service.SessionInfo `json:"sessions"`
	}
	status := doJSON(t, "GET", ts.URL+"/api/sessions?limit=1", nil, &out)
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	if out.Count != 1 || len(out.Sessions) != 1 {
		t.Errorf("Expected the limit applied, got %+v", out)
	}
}

func TestLevelEndpoints(t *testing.T) {
	ts := newTestServer(t)

	var levels []*service.LevelInfo
	if status := doJSON(t, "GET", ts.URL+"/api/levels", nil, &levels); status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	if len(levels) != 2 {
		t.Errorf("Expected 2 levels, got %d", len(levels))
	}

	var cfg map[string]interface{}
	if status := doJSON(t, "GET", ts.URL+"/api/levels/corridor", nil, &cfg); status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	if cfg["rows"] != float64(1) || cfg["cols"] != float64(3) {
		t.Errorf("Unexpected level config: %v", cfg)
	}

	if status := doJSON(t, "GET", ts.URL+"/api/levels/missing", nil, nil); status != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown level, got %d", status)
	}
}

func TestSolveEndpoint(t *testing.T) {
	ts := newTestServer(t)

	var out service.SolveOutcome
	status := doJSON(t, "POST", ts.URL+"/api/levels/corridor/solve", map[string]int{}, &out)
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	if !out.Solvable || len(out.Actions) != 2 {
		t.Errorf("Expected a 2-move solution, got %+v", out)
	}

	status = doJSON(t, "POST", ts.URL+"/api/levels/walled/solve", map[string]int{}, &out)
	if status != http.StatusOK || out.Solvable || out.FailReason != "no_solution" {
		t.Errorf("Expected no_solution, got %d %+v", status, out)
	}

	if status := doJSON(t, "POST", ts.URL+"/api/levels/missing/solve", map[string]int{}, nil); status != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown level, got %d", status)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	var out map[string]string
	if status := doJSON(t, "GET", ts.URL+"/api/health", nil, &out); status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	if out["status"] != "healthy" {
		t.Errorf("Unexpected health payload: %v", out)
	}
}
