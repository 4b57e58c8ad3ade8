package openapi_server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natevvv/osm-path-visualizer/pkg/geometry"
	"github.com/natevvv/osm-path-visualizer/pkg/graph"
	"github.com/natevvv/osm-path-visualizer/pkg/routing"
)

const spacing = 0.001

// 4x4 lattice south west of (48.003, 9.003), external ids 1000 + row*4 + column
func latticeGraph() *graph.Graph {
	g := graph.NewGraph()
	for row := 0; row < 4; row++ {
		for column := 0; column < 4; column++ {
			g.AddNode(int64(1000+row*4+column), geometry.MakePoint(48+float64(row)*spacing, 9+float64(column)*spacing))
		}
	}
	for row := 0; row < 4; row++ {
		for column := 0; column < 4; column++ {
			id := row*4 + column
			if column < 3 {
				g.AddEdge(id, id+1, graph.UnknownWeight)
			}
			if row < 3 {
				g.AddEdge(id, id+4, graph.UnknownWeight)
			}
		}
	}
	return g
}

func newTestServer(t *testing.T, modify func(*ServiceOptions)) http.Handler {
	t.Helper()
	options := DefaultServiceOptions()
	options.MaxStepsPerRequest = 1000
	if modify != nil {
		modify(&options)
	}
	return NewRouter(NewDefaultApiController(NewDefaultApiService(latticeGraph(), options)))
}

func do(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var request *http.Request
	if body == "" {
		request = httptest.NewRequest(method, target, nil)
	} else {
		request = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func decode[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &v), recorder.Body.String())
	return v
}

func createSession(t *testing.T, handler http.Handler) SessionResponse {
	t.Helper()
	recorder := do(t, handler, http.MethodPost, "/sessions", `{"origin":{"lat":48,"lon":9},"radius":1000}`)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	return decode[SessionResponse](t, recorder)
}

func TestGetAlgorithms(t *testing.T) {
	handler := newTestServer(t, nil)
	recorder := do(t, handler, http.MethodGet, "/algorithms", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	algorithms := decode[Algorithms](t, recorder)
	assert.Equal(t, "astar", algorithms.Default)
	assert.Contains(t, algorithms.Algorithms, "bellmanford")
	assert.NotContains(t, algorithms.Algorithms, "jump")
	assert.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
}

func TestGetNearestNode(t *testing.T) {
	handler := newTestServer(t, nil)

	recorder := do(t, handler, http.MethodGet, "/nodes/nearest?lat=48.0021&lon=9.0009", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	nearest := decode[NearestNode](t, recorder)
	assert.Equal(t, int64(1009), nearest.Id)

	tests := []struct {
		name  string
		query string
	}{
		{"missing lon", "lat=48"},
		{"invalid lat", "lat=north&lon=9"},
		{"out of range", "lat=91&lon=9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := do(t, handler, http.MethodGet, "/nodes/nearest?"+tt.query, "")
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
		})
	}
}

func TestSessionFlow(t *testing.T) {
	handler := newTestServer(t, nil)
	session := createSession(t, handler)
	assert.Equal(t, 16, session.NodeCount)
	assert.Equal(t, 24, session.EdgeCount)
	assert.Equal(t, 48.0, session.Origin.Lat)
	sessionPath := "/sessions/" + session.Id

	// no algorithm is active yet
	recorder := do(t, handler, http.MethodPost, sessionPath+"/step", "")
	assert.Equal(t, http.StatusConflict, recorder.Code)

	recorder = do(t, handler, http.MethodPost, sessionPath+"/start", `{"algorithm":"dfs","destination":{"lat":48.003,"lon":9.003}}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = do(t, handler, http.MethodPost, sessionPath+"/start", `{"destination":{"lat":48.003,"lon":9.003}}`)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	started := decode[StartResponse](t, recorder)
	assert.Equal(t, "astar", started.Algorithm)
	assert.InDelta(t, 48.003, started.Destination.Lat, 1e-9)

	recorder = do(t, handler, http.MethodPost, sessionPath+"/step", `{"count":1}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	first := decode[StepResponse](t, recorder)
	assert.Equal(t, 1, first.Steps)
	assert.False(t, first.Finished)
	assert.Nil(t, first.Route)
	require.NotEmpty(t, first.Nodes)
	assert.Equal(t, int64(1000), first.Nodes[0].Id)
	assert.Equal(t, 0.0, first.Nodes[0].Distance)

	recorder = do(t, handler, http.MethodPost, sessionPath+"/step", `{"count":1000}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	rest := decode[StepResponse](t, recorder)
	assert.True(t, rest.Finished)
	require.NotNil(t, rest.Route)
	assert.True(t, rest.Route.Reachable)
	assert.Len(t, rest.Route.Waypoints, 7)
	assert.Positive(t, rest.Route.Length)
	routeSegments := 0
	for _, segment := range rest.Trail {
		if segment.Kind == routing.ROUTE {
			routeSegments++
		}
	}
	assert.Equal(t, 6, routeSegments)
	assert.Positive(t, rest.KPIs.Steps)

	// a finished search does no more work and sends the route trail only once
	recorder = do(t, handler, http.MethodPost, sessionPath+"/step", "")
	again := decode[StepResponse](t, recorder)
	assert.Equal(t, 0, again.Steps)
	assert.True(t, again.Finished)
	assert.Empty(t, again.Trail)

	recorder = do(t, handler, http.MethodGet, sessionPath+"/route", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	fc, err := geojson.UnmarshalFeatureCollection(recorder.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, fc.Features, 3)
	line, ok := fc.Features[2].Geometry.(orb.LineString)
	require.True(t, ok)
	assert.Len(t, line, 7)
	assert.Equal(t, "astar", fc.Features[2].Properties["algorithm"])

	recorder = do(t, handler, http.MethodPost, sessionPath+"/reset", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	recorder = do(t, handler, http.MethodPost, sessionPath+"/step", "")
	assert.Equal(t, http.StatusConflict, recorder.Code)

	recorder = do(t, handler, http.MethodDelete, sessionPath, "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	recorder = do(t, handler, http.MethodPost, sessionPath+"/step", "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	recorder = do(t, handler, http.MethodDelete, sessionPath, "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestStepsAreBounded(t *testing.T) {
	handler := newTestServer(t, func(o *ServiceOptions) { o.MaxStepsPerRequest = 2 })
	session := createSession(t, handler)
	sessionPath := "/sessions/" + session.Id

	recorder := do(t, handler, http.MethodPost, sessionPath+"/start", `{"algorithm":"dijkstra","destination":{"lat":48.003,"lon":9.003}}`)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = do(t, handler, http.MethodPost, sessionPath+"/step", `{"count":50}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, 2, decode[StepResponse](t, recorder).Steps)
}

func TestStartRejectedByAlgorithm(t *testing.T) {
	handler := newTestServer(t, nil)
	session := createSession(t, handler)

	// the lattice has no diagonal edges
	recorder := do(t, handler, http.MethodPost, "/sessions/"+session.Id+"/start", `{"algorithm":"jump","destination":{"lat":48.003,"lon":9.003}}`)
	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "grid")
}

func TestInvalidRequests(t *testing.T) {
	handler := newTestServer(t, nil)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
	}{
		{"missing origin", http.MethodPost, "/sessions", `{"radius":10}`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/sessions", `{"origin":{"lat":48,"lon":9},"speed":3}`, http.StatusBadRequest},
		{"broken json", http.MethodPost, "/sessions", `{"origin":`, http.StatusBadRequest},
		{"invalid id", http.MethodPost, "/sessions/abc/step", "", http.StatusNotFound},
		{"unknown id", http.MethodPost, "/sessions/" + uuid.NewString() + "/reset", "", http.StatusNotFound},
		{"missing destination", http.MethodPost, "/sessions/" + uuid.NewString() + "/start", `{"algorithm":"astar"}`, http.StatusBadRequest},
		{"negative count", http.MethodPost, "/sessions/" + uuid.NewString() + "/step", `{"count":-1}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := do(t, handler, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, recorder.Code, recorder.Body.String())
		})
	}
}

func TestSessionLimit(t *testing.T) {
	handler := newTestServer(t, func(o *ServiceOptions) { o.MaxSessions = 1 })
	createSession(t, handler)

	recorder := do(t, handler, http.MethodPost, "/sessions", `{"origin":{"lat":48,"lon":9}}`)
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
}

func TestSessionExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := newSessionStore(time.Minute, 1)
	store.now = func() time.Time { return now }

	sess, err := store.add(routing.NewRouter(), nil)
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	_, err = store.get(sess.id.String())
	require.NoError(t, err)

	// the get above refreshed the session
	now = now.Add(50 * time.Second)
	_, err = store.get(sess.id.String())
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.add(routing.NewRouter(), nil)
	require.NoError(t, err, "the expired session is evicted")
	assert.Equal(t, 1, store.count())

	_, err = store.get(sess.id.String())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMetricsEndpoint(t *testing.T) {
	handler := newTestServer(t, nil)
	session := createSession(t, handler)
	do(t, handler, http.MethodPost, "/sessions/"+session.Id+"/start", `{"destination":{"lat":48.003,"lon":9.003}}`)
	do(t, handler, http.MethodPost, "/sessions/"+session.Id+"/step", `{"count":3}`)

	recorder := do(t, handler, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "pathfinding_steps_total")
	assert.Contains(t, recorder.Body.String(), "pathfinding_active_sessions")
}
