package playground

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitchenbot/internal/agents"
	"kitchenbot/internal/database"
	"kitchenbot/internal/evaluation"
	"kitchenbot/internal/kitchen"
	"kitchenbot/internal/models"
	"kitchenbot/internal/monitoring"
	"kitchenbot/internal/recipes"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	*PlaygroundServer
	store   *database.Store
	session *Session
	monitor *monitoring.Monitor
}

func newTestServer(t *testing.T, secret string) *testServer {
	t.Helper()

	store, err := database.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Migrate())

	monitor := monitoring.NewMonitor()
	session, err := NewSession(kitchen.DefaultConfig(), recipes.Default(), agents.DefaultConfig(), 1, monitor)
	require.NoError(t, err)

	evaluator := evaluation.NewEvaluator(recipes.Default(), kitchen.DefaultConfig(), agents.DefaultConfig())
	evaluator.Metrics = evaluation.NewMetricsCollector()

	server := NewPlaygroundServer(Options{
		Evaluator: evaluator,
		Monitor:   monitor,
		Store:     store,
		Session:   session,
		JWTSecret: secret,
	})
	return &testServer{PlaygroundServer: server, store: store, session: session, monitor: monitor}
}

func (s *testServer) do(method, path string, body interface{}, header map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, "")
	w := s.do("GET", "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHandleListRecipes(t *testing.T) {
	s := newTestServer(t, "")
	w := s.do("GET", "/api/recipes", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response []models.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response, len(recipes.Default().Recipes()))
}

func TestHandleListScenarios(t *testing.T) {
	s := newTestServer(t, "")
	w := s.do("GET", "/api/scenarios", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var response []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response, 5)

	for _, scenario := range response {
		assert.Contains(t, scenario, "id")
		assert.Contains(t, scenario, "name")
		assert.Contains(t, scenario, "menu")
		assert.Contains(t, scenario, "bots")
	}
}

func TestHandleState(t *testing.T) {
	s := newTestServer(t, "")
	w := s.do("GET", "/api/state", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var frame Frame
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &frame))
	assert.Equal(t, "frame", frame.Type)
	assert.Len(t, frame.Stations, 15)
	assert.Len(t, frame.Players, 2)
	assert.Len(t, frame.Bots, 1)
}

func TestHandleEvaluateValidation(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do("POST", "/api/evaluate", map[string]interface{}{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do("POST", "/api/evaluate", EvaluationRequest{Scenario: "nope"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid scenario")
}

func TestHandleEvaluateAndRuns(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do("POST", "/api/evaluate", EvaluationRequest{Scenario: "burger_rush", Wait: true}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result evaluation.EvaluationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "burger_rush", result.Scenario)
	assert.NotEmpty(t, result.RunID)

	metrics := s.monitor.GetMetrics()
	assert.Equal(t, result.RunID, metrics["burger_rush_last_run"])

	w = s.do("GET", "/api/runs", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var runs []models.RunRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, result.RunID, runs[0].RunID)
	assert.Equal(t, result.Score, runs[0].Score)

	w = s.do("GET", "/api/runs/"+result.RunID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var run models.RunRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &run))
	assert.Len(t, run.Events, len(result.Events))

	w = s.do("GET", "/api/runs/unknown", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do("GET", "/api/runs?limit=zero", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleEvaluateInBackground(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do("POST", "/api/evaluate", EvaluationRequest{Scenario: "pizza_night", Seed: 4}, nil)
	require.Equal(t, http.StatusAccepted, w.Code)

	s.Wait()
	runs, err := s.store.Runs("pizza_night", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, int64(4), runs[0].Seed)
}

func TestRunsWithoutStore(t *testing.T) {
	server := NewPlaygroundServer(Options{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/runs", nil)
	server.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/api/evaluate", strings.NewReader(`{"scenario":"burger_rush"}`))
	server.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestEvaluateRequiresToken(t *testing.T) {
	s := newTestServer(t, "s3cret")
	body := EvaluationRequest{Scenario: "burger_rush", Wait: true}

	w := s.do("POST", "/api/evaluate", body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do("POST", "/api/evaluate", body, map[string]string{"Authorization": "Bearer not-a-token"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	forged, err := IssueToken("other-secret", "tester", time.Hour)
	require.NoError(t, err)
	w = s.do("POST", "/api/evaluate", body, map[string]string{"Authorization": "Bearer " + forged})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	expired, err := IssueToken("s3cret", "tester", -time.Minute)
	require.NoError(t, err)
	w = s.do("POST", "/api/evaluate", body, map[string]string{"Authorization": "Bearer " + expired})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := IssueToken("s3cret", "tester", time.Hour)
	require.NoError(t, err)
	w = s.do("POST", "/api/evaluate", body, map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, w.Code)

	// read endpoints stay open
	w = s.do("GET", "/api/scenarios", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebSocketStream(t *testing.T) {
	s := newTestServer(t, "")
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var first Frame
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "frame", first.Type)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.session.Run(ctx, 10*time.Millisecond, time.Second)

	var next Frame
	require.NoError(t, conn.ReadJSON(&next))
	assert.Equal(t, first.Session, next.Session)
	assert.Greater(t, next.Clock, first.Clock)
}
