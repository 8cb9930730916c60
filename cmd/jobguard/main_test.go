package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const testPassword = "Secret1!"

// fakeServer is an in-memory JobGuard server.
type fakeServer struct {
	mu           sync.Mutex
	probability  float64
	logs         []string
	lastText     string
	predictCalls int
	logsCalls    int
	deleteCalls  int
	users        map[string]bool
}

func newFakeServer(t *testing.T) (*httptest.Server, *fakeServer) {
	t.Helper()

	fs := &fakeServer{
		probability: 90,
		logs:        []string{"[INIT] analysis core online", "[ERROR] BLOCK 10.0.0.7"},
		users:       map[string]bool{"alice": true, "Yoge": true},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/predict", fs.predict)
	mux.HandleFunc("/api/user_info", fs.userInfo)
	mux.HandleFunc("/api/system_logs", fs.systemLogs)
	mux.HandleFunc("/api/login", fs.login)
	mux.HandleFunc("/api/signup", fs.signup)
	mux.HandleFunc("/api/logout", fs.logout)
	mux.HandleFunc("/api/delete_account", fs.deleteAccount)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, fs
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // test server
}

func (fs *fakeServer) sessionUser(r *http.Request) string {
	c, err := r.Cookie("session")
	if err != nil {
		return ""
	}
	user, ok := strings.CutPrefix(c.Value, "ok-")
	if !ok {
		return ""
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if !fs.users[user] {
		return ""
	}
	return user
}

func (fs *fakeServer) predict(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck // test server

	fs.mu.Lock()
	fs.predictCalls++
	fs.lastText = req.Text
	p := fs.probability
	fs.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"fraud_probability": p,
		"is_gibberish":      false,
		"reasons":           []string{"Upfront payment requested"},
		"system_logs":       []string{"[AI] token weights computed"},
	})
}

func (fs *fakeServer) userInfo(w http.ResponseWriter, r *http.Request) {
	user := fs.sessionUser(r)
	if user == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Not logged in"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"username": user})
}

func (fs *fakeServer) systemLogs(w http.ResponseWriter, r *http.Request) {
	if fs.sessionUser(r) != "Yoge" {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Forbidden"})
		return
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.logsCalls++
	writeJSON(w, http.StatusOK, map[string][]string{"logs": fs.logs})
}

func (fs *fakeServer) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck // test server

	fs.mu.Lock()
	known := fs.users[req.Username]
	fs.mu.Unlock()

	if !known || req.Password != testPassword {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "Invalid credentials"})
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "session", Value: "ok-" + req.Username, Path: "/"})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "username": req.Username})
}

func (fs *fakeServer) signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck // test server

	fs.mu.Lock()
	exists := fs.users[req.Username]
	if !exists {
		fs.users[req.Username] = true
	}
	fs.mu.Unlock()

	if exists {
		writeJSON(w, http.StatusConflict, map[string]any{"success": false, "error": "Username taken"})
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "session", Value: "ok-" + req.Username, Path: "/"})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "username": req.Username})
}

func (fs *fakeServer) logout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (fs *fakeServer) deleteAccount(w http.ResponseWriter, r *http.Request) {
	user := fs.sessionUser(r)
	fs.mu.Lock()
	fs.deleteCalls++
	delete(fs.users, user)
	fs.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (fs *fakeServer) calls() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.predictCalls
}

// run executes the root command with args and returns what it wrote.
func run(t *testing.T, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()

	if stdin == nil {
		stdin = strings.NewReader("")
	}
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetIn(stdin)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// env holds the flags every test command shares.
type env struct {
	server string
	data   string
}

func newEnv(t *testing.T, srv *httptest.Server) env {
	t.Helper()
	return env{server: srv.URL, data: t.TempDir()}
}

func (e env) args(args ...string) []string {
	return append(args, "--server", e.server, "--data-dir", e.data)
}

func (fs *fakeServer) systemLogCalls() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.logsCalls
}
