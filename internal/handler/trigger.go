package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/markussiebert/dnscope/internal/logger"
	"github.com/markussiebert/dnscope/internal/runner"
)

// DefaultRunTimeout bounds a triggered run: two families, each with a lookup,
// a resolution and a provider call.
const DefaultRunTimeout = 60 * time.Second

// Runner performs one update run
type Runner interface {
	Run(ctx context.Context) runner.Report
}

// StateReader exposes the persisted address records
type StateReader interface {
	All(ctx context.Context) (map[string]string, error)
}

// Config represents the trigger handler configuration
type Config struct {
	Runner  Runner
	State   StateReader
	Timeout time.Duration
}

// TriggerHandler runs the updater on request and reports the last result.
// Runs are serialized: a request arriving during a run waits for it to finish.
type TriggerHandler struct {
	config Config

	runMu sync.Mutex

	mu      sync.Mutex
	last    *runner.Report
	lastRun time.Time
}

// NewTriggerHandler creates a new trigger handler
func NewTriggerHandler(config Config) *TriggerHandler {
	if config.Timeout == 0 {
		config.Timeout = DefaultRunTimeout
	}
	return &TriggerHandler{config: config}
}

// Run handles GET and POST /run
func (h *TriggerHandler) Run(w http.ResponseWriter, r *http.Request) {
	logger.Debug("Received %s request: %s from %s", r.Method, r.URL.Path, r.RemoteAddr)

	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		logger.Warn("Method not allowed: %s from %s", r.Method, r.RemoteAddr)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.runMu.Lock()
	defer h.runMu.Unlock()

	// The run outlives a client that hangs up; state stays consistent either way.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.config.Timeout)
	defer cancel()

	report := h.config.Runner.Run(ctx)
	h.mu.Lock()
	h.last = &report
	h.lastRun = time.Now()
	h.mu.Unlock()

	status := http.StatusOK
	if report.Failed() {
		status = http.StatusBadGateway
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if len(report.Outcomes) == 0 {
		fmt.Fprintln(w, "no address family enabled")
		return
	}
	fmt.Fprint(w, report.String())
}

// statusResponse is the body of GET /status
type statusResponse struct {
	LastRun *time.Time        `json:"lastRun,omitempty"`
	Report  *runner.Report    `json:"report,omitempty"`
	State   map[string]string `json:"state"`
}

// Status handles GET /status
func (h *TriggerHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := statusResponse{State: map[string]string{}}

	if h.config.State != nil {
		values, err := h.config.State.All(r.Context())
		if err != nil {
			logger.Error("Could not read state: %v", err)
			http.Error(w, "could not read state", http.StatusInternalServerError)
			return
		}
		resp.State = values
	}

	h.mu.Lock()
	if h.last != nil {
		report := *h.last
		lastRun := h.lastRun
		resp.Report = &report
		resp.LastRun = &lastRun
	}
	h.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Warn("Could not write status response: %v", err)
	}
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK\n"))
}
