package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncident(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/incident/INC-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"incident_id": "INC-1",
			"threat_score": 90,
			"main_event": "ML Anomaly Detected",
			"status": "new",
			"sequence": [],
			"ai_summary": "report",
			"first_seen": 1756100000000,
			"last_seen": 1756100500000,
			"attacker_ip": "203.0.113.7",
			"ai_playbook": "1. Isolate host"
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	inc, err := c.Incident(context.Background(), "INC-1")
	require.NoError(t, err)
	assert.Equal(t, "INC-1", inc.IncidentID)
	assert.Equal(t, "203.0.113.7", inc.AttackerIP)
	assert.Equal(t, int64(1756100000000), inc.FirstSeen)
	assert.Equal(t, "1. Isolate host", inc.AIPlaybook)
}

func TestIncident_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Incident(context.Background(), "INC-1")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestIncident_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"incident_id": `))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Incident(context.Background(), "INC-1")
	require.Error(t, err)
}

func TestSimulate(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL)
	require.NoError(t, c.Simulate(context.Background(), SimPortScan))
	assert.Equal(t, "/simulate/portscan", gotPath)

	require.NoError(t, c.Simulate(context.Background(), SimUDPFlood))
	assert.Equal(t, "/simulate/udpflood", gotPath)
}

func TestSimulate_UnknownKind(t *testing.T) {
	// Must fail before any network call.
	c := New("http://127.0.0.1:0")
	err := c.Simulate(context.Background(), "synflood")
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestMitigate(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL)
	require.NoError(t, c.Mitigate(context.Background(), "203.0.113.7"))
	assert.Equal(t, "/mitigate/block_ip/203.0.113.7", gotPath)
}

func TestMitigate_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.Mitigate(context.Background(), "203.0.113.7")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}
