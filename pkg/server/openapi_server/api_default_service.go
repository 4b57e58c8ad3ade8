package openapi_server

import (
	"context"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/natevvv/osm-path-visualizer/pkg/graph"
	"github.com/natevvv/osm-path-visualizer/pkg/graph/path"
	"github.com/natevvv/osm-path-visualizer/pkg/routing"
)

type ServiceOptions struct {
	SessionTTL         time.Duration
	MaxSessions        int
	DefaultRadius      float64 // meters
	MaxRadius          float64 // meters, larger radii are clamped
	DefaultAlgorithm   string
	MaxStepsPerRequest int
	DebugLevel         int
	TrailScale         float64
	RouteSpeed         int // stretch factor of the route animation
}

func DefaultServiceOptions() ServiceOptions {
	return ServiceOptions{
		SessionTTL:         30 * time.Minute,
		MaxSessions:        64,
		DefaultRadius:      2000,
		MaxRadius:          20000,
		DefaultAlgorithm:   path.DefaultKind.String(),
		MaxStepsPerRequest: 500,
		TrailScale:         routing.DefaultTrailScale,
		RouteSpeed:         4,
	}
}

// DefaultApiService is a service that implements the logic for the DefaultApiServicer.
// The base graph is only read. Every session searches on its own region graph.
type DefaultApiService struct {
	graph    *graph.Graph
	options  ServiceOptions
	sessions *sessionStore
}

// NewDefaultApiService creates a default api service
func NewDefaultApiService(g *graph.Graph, options ServiceOptions) *DefaultApiService {
	return &DefaultApiService{
		graph:    g,
		options:  options,
		sessions: newSessionStore(options.SessionTTL, options.MaxSessions),
	}
}

func (s *DefaultApiService) GetAlgorithms(ctx context.Context) (ImplResponse, error) {
	return Response(http.StatusOK, Algorithms{Algorithms: menuNames(), Default: s.options.DefaultAlgorithm}), nil
}

func (s *DefaultApiService) GetNearestNode(ctx context.Context, point Point) (ImplResponse, error) {
	nearest := s.graph.NearestNode(point.geometry())
	if nearest == graph.NoNode {
		return ImplResponse{}, &routing.PreconditionError{Op: "find nearest node", Err: routing.ErrNodeNotFound}
	}
	node := s.graph.GetNode(nearest)
	return Response(http.StatusOK, NearestNode{Id: node.ExternalId, Point: makePoint(node.Point)}), nil
}

// CreateSession extracts the region around the node closest to the origin. The search starts at that node.
func (s *DefaultApiService) CreateSession(ctx context.Context, req SessionRequest) (ImplResponse, error) {
	seed := s.graph.NearestNode(req.Origin.geometry())
	if seed == graph.NoNode {
		return ImplResponse{}, &routing.PreconditionError{Op: "create session", Err: routing.ErrNodeNotFound}
	}

	radius := req.Radius
	if radius <= 0 {
		radius = s.options.DefaultRadius
	}
	if s.options.MaxRadius > 0 && radius > s.options.MaxRadius {
		radius = s.options.MaxRadius
	}

	seedNode := s.graph.GetNode(seed)
	region := graph.Region(s.graph, graph.BoundAround(seedNode.Point, radius), seed)

	router := routing.NewRouter(path.WithDebugLevel(s.options.DebugLevel))
	router.SetDebugLevel(s.options.DebugLevel)
	router.SetGraph(region)
	if err := router.SetStartByExternalId(seedNode.ExternalId); err != nil {
		return ImplResponse{}, err
	}

	sess, err := s.sessions.add(router, routing.NewTrailBuilder(region, s.options.TrailScale))
	if err != nil {
		return ImplResponse{}, err
	}
	regionNodes.Observe(float64(region.NodeCount()))
	if s.options.DebugLevel >= 1 {
		log.Printf("Session %v: %v nodes, %v edges around %v\n", sess.id, region.NodeCount(), region.EdgeCount(), seedNode.ExternalId)
	}

	return Response(http.StatusCreated, SessionResponse{
		Id:         sess.id.String(),
		Origin:     makePoint(seedNode.Point),
		NodeCount:  region.NodeCount(),
		EdgeCount:  region.EdgeCount(),
		Radius:     radius,
		Algorithms: menuNames(),
	}), nil
}

// StartSearch starts the algorithm towards the node closest to the destination
func (s *DefaultApiService) StartSearch(ctx context.Context, id string, req StartRequest) (ImplResponse, error) {
	sess, err := s.sessions.get(id)
	if err != nil {
		return ImplResponse{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	name := req.Algorithm
	if name == "" {
		name = s.options.DefaultAlgorithm
	}

	destination, err := sess.router.FindNearestNode(req.Destination.geometry())
	if err != nil {
		return ImplResponse{}, err
	}
	if err := sess.router.SetEndNode(destination); err != nil {
		return ImplResponse{}, err
	}
	if err := sess.router.Start(name); err != nil {
		return ImplResponse{}, err
	}
	sess.trail.Reset()
	sess.routeSent = false

	kind, _ := sess.router.Kind()
	route := sess.router.Route()
	return Response(http.StatusOK, StartResponse{
		Algorithm:   kind.String(),
		Origin:      makePoint(route.Origin),
		Destination: makePoint(route.Destination),
	}), nil
}

// NextSteps performs up to count steps. The route (and its trail) is added once the search is finished.
func (s *DefaultApiService) NextSteps(ctx context.Context, id string, req StepRequest) (ImplResponse, error) {
	sess, err := s.sessions.get(id)
	if err != nil {
		return ImplResponse{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	count := req.Count
	if count == 0 {
		count = 1
	}
	if count > s.options.MaxStepsPerRequest {
		count = s.options.MaxStepsPerRequest
	}

	start := time.Now()
	g := sess.router.Graph()
	response := StepResponse{Nodes: make([]StepNode, 0), Trail: make([]routing.TrailSegment, 0)}

	for response.Steps < count && !sess.router.Finished() {
		if err := ctx.Err(); err != nil {
			return ImplResponse{}, err
		}
		updated, err := sess.router.NextStep()
		if err != nil {
			return ImplResponse{}, err
		}
		response.Steps++
		for _, nodeId := range updated {
			response.Nodes = append(response.Nodes, makeStepNode(g, nodeId))
		}
		response.Trail = append(response.Trail, sess.trail.Search(updated)...)
	}

	kind, _ := sess.router.Kind()
	stepsTotal.WithLabelValues(kind.String()).Add(float64(response.Steps))
	stepBatchDuration.WithLabelValues(kind.String()).Observe(time.Since(start).Seconds())

	response.Finished = sess.router.Finished()
	if response.Finished {
		route := sess.router.Route()
		response.Route = makeRouteResult(route)
		if !sess.routeSent {
			response.Trail = append(response.Trail, sess.trail.Route(route.Nodes, s.options.RouteSpeed)...)
			sess.routeSent = true
			searchesTotal.WithLabelValues(kind.String(), outcome(route)).Inc()
		}
	}
	response.KPIs = sess.router.KPIs()

	return Response(http.StatusOK, response), nil
}

func (s *DefaultApiService) ResetSession(ctx context.Context, id string) (ImplResponse, error) {
	sess, err := s.sessions.get(id)
	if err != nil {
		return ImplResponse{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.router.Reset()
	sess.trail.Reset()
	sess.routeSent = false
	return Response(http.StatusOK, map[string]string{"id": id}), nil
}

func (s *DefaultApiService) DeleteSession(ctx context.Context, id string) (ImplResponse, error) {
	if err := s.sessions.delete(id); err != nil {
		return ImplResponse{}, err
	}
	return Response(http.StatusOK, map[string]string{"id": id}), nil
}

// GetRoute returns the origin, the destination and (if found) the route line as GeoJSON feature collection
func (s *DefaultApiService) GetRoute(ctx context.Context, id string) (ImplResponse, error) {
	sess, err := s.sessions.get(id)
	if err != nil {
		return ImplResponse{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	route := sess.router.Route()
	kind, active := sess.router.Kind()

	fc := geojson.NewFeatureCollection()

	origin := geojson.NewFeature(route.Origin)
	origin.Properties["role"] = "origin"
	fc.Append(origin)

	if sess.router.EndNode() != graph.NoNode {
		destination := geojson.NewFeature(route.Destination)
		destination.Properties["role"] = "destination"
		fc.Append(destination)
	}

	if route.Exists {
		line := geojson.NewFeature(orb.LineString(route.Waypoints))
		line.Properties["role"] = "route"
		line.Properties["length"] = route.Length
		if active {
			line.Properties["algorithm"] = kind.String()
		}
		fc.Append(line)
	}

	return Response(http.StatusOK, fc), nil
}

func menuNames() []string {
	names := make([]string, 0)
	for _, kind := range path.Menu() {
		names = append(names, kind.String())
	}
	return names
}

func makeStepNode(g *graph.Graph, id graph.NodeId) StepNode {
	node := g.GetNode(id)
	stepNode := StepNode{
		Id:       node.ExternalId,
		Point:    makePoint(node.Point),
		Distance: -1,
		Parent:   -1,
	}
	if !math.IsInf(node.G, 1) {
		stepNode.Distance = node.G
	} else if !math.IsInf(node.DistanceFromStart, 1) {
		stepNode.Distance = node.DistanceFromStart
	}
	if node.Parent != graph.NoNode {
		stepNode.Parent = g.GetNode(node.Parent).ExternalId
	}
	return stepNode
}

func makeRouteResult(route routing.Route) *RouteResult {
	waypoints := make([]Point, 0, len(route.Waypoints))
	for _, waypoint := range route.Waypoints {
		waypoints = append(waypoints, makePoint(waypoint))
	}
	return &RouteResult{Reachable: route.Exists, Length: route.Length, Waypoints: waypoints}
}

func outcome(route routing.Route) string {
	if route.Exists {
		return "found"
	}
	return "exhausted"
}
