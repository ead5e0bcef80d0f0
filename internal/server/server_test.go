package server

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
	"github.com/pdrpinto/sokoban"
	"github.com/pdrpinto/sokoban/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const room = "#######\n#     #\n# $@  #\n#  .  #\n#######"

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestRouter(opts Options) *gin.Engine {
	return NewRouter(NewHandlers(opts), logging.Discard(), 1<<20)
}

func post(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHandleSolve(t *testing.T) {
	router := setupTestRouter(Options{})

	w := post(t, router, "/v1/sokoban/solve", SolveRequest{Warehouse: "3\n" + room})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	resp := decode[SolveResponse](t, w)
	assert.True(t, resp.Solved)
	assert.Equal(t, 12, resp.Cost)
	assert.Equal(t, []sokoban.Action{sokoban.Up, sokoban.Left, sokoban.Down, sokoban.Left, sokoban.Down, sokoban.Right}, resp.Actions)
	assert.Equal(t, "Up, Left, Down, Left, Down, Right", resp.Result)
	assert.False(t, resp.Cached)
}

func TestHandleSolveImpossible(t *testing.T) {
	router := setupTestRouter(Options{})
	w := post(t, router, "/v1/sokoban/solve", SolveRequest{Warehouse: "#####\n#$ @#\n#  .#\n#####"})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[SolveResponse](t, w)
	assert.False(t, resp.Solved)
	assert.Equal(t, "Impossible", resp.Result)
}

func TestHandleSolveErrors(t *testing.T) {
	router := setupTestRouter(Options{})

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{name: "missing warehouse", body: map[string]any{}, status: http.StatusBadRequest, code: "INVALID_REQUEST"},
		{name: "negative workers", body: SolveRequest{Warehouse: room, Workers: -1}, status: http.StatusBadRequest, code: "INVALID_REQUEST"},
		{name: "bad warehouse", body: SolveRequest{Warehouse: "#@@#"}, status: http.StatusUnprocessableEntity, code: "INVALID_WAREHOUSE"},
		{name: "expansion limit", body: SolveRequest{Warehouse: room, MaxExpansions: 1}, status: http.StatusUnprocessableEntity, code: "SEARCH_LIMIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, router, "/v1/sokoban/solve", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decode[ErrorResponse](t, w).Code)
		})
	}
}

type slowSolver struct{}

func (slowSolver) Solve(ctx context.Context, _ *sokoban.Warehouse, _ ...sokoban.SolveOption) (sokoban.Solution, bool, error) {
	<-ctx.Done()
	return sokoban.Solution{}, false, ctx.Err()
}

func TestHandleSolveTimeout(t *testing.T) {
	router := setupTestRouter(Options{Solver: slowSolver{}, SolveTimeout: time.Second})

	w := post(t, router, "/v1/sokoban/solve", SolveRequest{Warehouse: room, TimeoutMs: 10})
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Equal(t, "SOLVE_TIMEOUT", decode[ErrorResponse](t, w).Code)
}

func TestHandleTaboo(t *testing.T) {
	router := setupTestRouter(Options{})
	w := post(t, router, "/v1/sokoban/taboo", TabooRequest{Warehouse: room})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[TabooResponse](t, w)
	assert.Equal(t, "#######\n#XXXXX#\n#X   X#\n#X   X#\n#######", resp.Taboo)
	assert.Equal(t, 9, resp.Count)
	assert.Len(t, resp.Cells, 9)
	assert.Equal(t, sokoban.Coord{X: 1, Y: 1}, resp.Cells[0])
}

func TestHandleCheck(t *testing.T) {
	router := setupTestRouter(Options{})

	w := post(t, router, "/v1/sokoban/check", CheckRequest{Warehouse: room, Actions: []string{"Left"}})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[CheckResponse](t, w)
	assert.True(t, resp.Legal)
	assert.Equal(t, -1, resp.FailedAt)
	assert.Equal(t, "#######\n#     #\n#$@   #\n#  .  #\n#######", resp.Result)

	w = post(t, router, "/v1/sokoban/check", CheckRequest{Warehouse: room, Actions: []string{"Up", "Up"}})
	resp = decode[CheckResponse](t, w)
	assert.False(t, resp.Legal)
	assert.Equal(t, 1, resp.FailedAt)
	assert.Equal(t, "Impossible", resp.Result)

	w = post(t, router, "/v1/sokoban/check", CheckRequest{Warehouse: room, Actions: []string{"Jump"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ACTION", decode[ErrorResponse](t, w).Code)
}

func TestHandleExplore(t *testing.T) {
	router := setupTestRouter(Options{})

	w := post(t, router, "/v1/sokoban/explore", ExploreRequest{Warehouse: room, Steps: 3})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[ExploreResponse](t, w)
	require.Len(t, resp.Steps, 3)
	assert.False(t, resp.Done)
	assert.Equal(t, 1, resp.Steps[0].Step)
	assert.Equal(t, sokoban.Coord{X: 3, Y: 2}, resp.Steps[0].Worker)
	assert.Equal(t, 2.0, resp.Steps[0].Estimate)

	w = post(t, router, "/v1/sokoban/explore", ExploreRequest{Warehouse: room, Steps: 10000})
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[ExploreResponse](t, w)
	assert.True(t, resp.Done)
	assert.True(t, resp.Found)
	assert.Equal(t, 6.0, resp.Cost)
	assert.Len(t, resp.Actions, 6)

	w = post(t, router, "/v1/sokoban/explore", ExploreRequest{Warehouse: room})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	router := setupTestRouter(Options{})

	req := httptest.NewRequest(http.MethodGet, "/v1/sokoban/health", nil)
	req.Header.Set(requestIDHeader, "fixed-id")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode[HealthResponse](t, w).Status)
	assert.Equal(t, "fixed-id", w.Header().Get(requestIDHeader))

	// a solve makes sure the solver metrics have samples
	post(t, router, "/v1/sokoban/solve", SolveRequest{Warehouse: room})

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "sokoban_solve_total"))
}

func TestBodyLimit(t *testing.T) {
	router := NewRouter(NewHandlers(Options{}), logging.Discard(), 16)
	w := post(t, router, "/v1/sokoban/taboo", TabooRequest{Warehouse: room})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServeShutsDown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0", setupTestRouter(Options{})) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
