package dispatch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paretosim/optimization-core/pkg/logger"
	"github.com/paretosim/optimization-core/pkg/utils"
)

func startWorker(t *testing.T, sim Simulator) *httptest.Server {
	t.Helper()
	ws, err := NewWorkerServer(sim)
	require.NoError(t, err)
	srv := httptest.NewServer(ws.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPTransportRoundTrip(t *testing.T) {
	srv := startWorker(t, sumSim)

	tr, err := NewHTTPTransport(srv.URL, 5*time.Second)
	require.NoError(t, err)
	defer tr.Close()

	res, err := tr.Submit(context.Background(), WorkItem{
		Member:      "member-0",
		Realization: "real-1",
		Decisions:   map[string]float64{"x": 3},
		Parameters:  map[string]float64{"p": 4},
	})
	require.NoError(t, err)

	assert.Equal(t, "member-0", res.Member)
	assert.Equal(t, "real-1", res.Realization)
	assert.Equal(t, 7.0, res.Values["f1"])
	assert.Equal(t, 12.0, res.Values["f2"])
}

func TestHTTPTransportSimulatorFailure(t *testing.T) {
	srv := startWorker(t, func(ctx context.Context, dec, par map[string]float64) (map[string]float64, error) {
		return nil, fmt.Errorf("model blew up")
	})

	tr, err := NewHTTPTransport(srv.URL, 5*time.Second)
	require.NoError(t, err)

	_, err = tr.Submit(context.Background(), WorkItem{Member: "m", Realization: "r"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model blew up")
}

func TestHTTPTransportConnectionFailure(t *testing.T) {
	srv := startWorker(t, sumSim)
	srv.Close()

	tr, err := NewHTTPTransport(srv.URL, time.Second)
	require.NoError(t, err)

	_, err = tr.Submit(context.Background(), WorkItem{Member: "m", Realization: "r"})
	assert.Error(t, err)
}

func TestNewHTTPTransportValidation(t *testing.T) {
	_, err := NewHTTPTransport("", time.Second)
	assert.Error(t, err)
}

func TestWorkerServerValidation(t *testing.T) {
	_, err := NewWorkerServer(nil)
	assert.Error(t, err)
}

func TestWorkerServerRejectsBadRequests(t *testing.T) {
	srv := startWorker(t, sumSim)

	// Wrong method
	resp, err := http.Get(srv.URL + "/v1/evaluate")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	// Malformed body
	resp, err = http.Post(srv.URL+"/v1/evaluate", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Missing identity
	resp, err = http.Post(srv.URL+"/v1/evaluate", "application/json", strings.NewReader(`{"decisions":{}}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWorkerServerHealthz(t *testing.T) {
	srv := startWorker(t, sumSim)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDispatcherOverHTTPWorkers(t *testing.T) {
	var transports []Transport
	for i := 0; i < 3; i++ {
		srv := startWorker(t, sumSim)
		tr, err := NewHTTPTransport(srv.URL, 5*time.Second)
		require.NoError(t, err)
		transports = append(transports, tr)
	}

	d, err := NewDispatcher(transports, 1, utils.NewConstantBackoff(0), logger.Default)
	require.NoError(t, err)
	defer d.Close()

	outcomes, err := d.EvaluateCycle(context.Background(), makeItems(5, 4), []string{"f1", "f2"})
	require.NoError(t, err)
	assert.Equal(t, 20, outcomes.Len())
}
