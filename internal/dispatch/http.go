package dispatch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/paretosim/optimization-core/pkg/logger"
)

var json = jsoniter.ConfigFastest

// errorResponse is the wire shape of a worker-side failure.
type errorResponse struct {
	Error string `json:"error"`
}

// HTTPTransport is a worker connection to a remote worker daemon's
// evaluation endpoint.
type HTTPTransport struct {
	endpoint string
	client   *http.Client
}

// NewHTTPTransport creates a connection to a worker daemon at the given
// base URL (e.g. http://worker-3:8090).
func NewHTTPTransport(baseURL string, timeout time.Duration) (*HTTPTransport, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("dispatch: worker URL is required")
	}
	return &HTTPTransport{
		endpoint: baseURL + "/v1/evaluate",
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// Name implements Transport.
func (t *HTTPTransport) Name() string {
	return t.endpoint
}

// Submit implements Transport by POSTing the work item and decoding the
// result.
func (t *HTTPTransport) Submit(ctx context.Context, item WorkItem) (Result, error) {
	body, err := json.Marshal(item)
	if err != nil {
		return Result{}, fmt.Errorf("encode work item: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("submit to %s: %w", t.endpoint, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read response from %s: %w", t.endpoint, err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if json.Unmarshal(payload, &errResp) == nil && errResp.Error != "" {
			return Result{}, fmt.Errorf("worker %s: %s", t.endpoint, errResp.Error)
		}
		return Result{}, fmt.Errorf("worker %s returned status %d", t.endpoint, resp.StatusCode)
	}

	var result Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return Result{}, fmt.Errorf("decode result from %s: %w", t.endpoint, err)
	}
	return result, nil
}

// Close implements Transport.
func (t *HTTPTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}

// WorkerServer is the worker daemon's HTTP surface: it hosts a Simulator
// behind an evaluation endpoint.
type WorkerServer struct {
	mux *http.ServeMux
	sim Simulator
}

// NewWorkerServer creates the HTTP handler around a Simulator.
func NewWorkerServer(sim Simulator) (*WorkerServer, error) {
	if sim == nil {
		return nil, fmt.Errorf("dispatch: simulator is required")
	}
	s := &WorkerServer{
		mux: http.NewServeMux(),
		sim: sim,
	}
	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/v1/evaluate", s.handleEvaluate)
	return s, nil
}

// Handler returns the HTTP handler.
func (s *WorkerServer) Handler() http.Handler {
	return s.mux
}

func (s *WorkerServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

func (s *WorkerServer) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var item WorkItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid work item: "+err.Error())
		return
	}
	if item.Member == "" || item.Realization == "" {
		s.writeError(w, http.StatusBadRequest, "work item requires member and realization names")
		return
	}

	values, err := s.sim(r.Context(), item.Decisions, item.Parameters)
	if err != nil {
		logger.Warn("simulator run failed", "member", item.Member, "realization", item.Realization, "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Debug("work item evaluated", "member", item.Member, "realization", item.Realization)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(Result{
		Member:      item.Member,
		Realization: item.Realization,
		Values:      values,
	}); err != nil {
		logger.Error("encode result failed", "error", err)
	}
}

func (s *WorkerServer) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}
