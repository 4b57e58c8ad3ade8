package openapi_server

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// DefaultApiController binds http requests to an api service and writes the service results to the http response
type DefaultApiController struct {
	service      DefaultApiServicer
	errorHandler ErrorHandler
}

// DefaultApiOption for how the controller is set up.
type DefaultApiOption func(*DefaultApiController)

// WithDefaultApiErrorHandler inject ErrorHandler into controller
func WithDefaultApiErrorHandler(h ErrorHandler) DefaultApiOption {
	return func(c *DefaultApiController) {
		c.errorHandler = h
	}
}

// NewDefaultApiController creates a default api controller
func NewDefaultApiController(s DefaultApiServicer, opts ...DefaultApiOption) Router {
	controller := &DefaultApiController{
		service:      s,
		errorHandler: DefaultErrorHandler,
	}

	for _, opt := range opts {
		opt(controller)
	}

	return controller
}

// Routes returns all of the api route for the DefaultApiController
func (c *DefaultApiController) Routes() Routes {
	return Routes{
		{
			"GetAlgorithms",
			strings.ToUpper("Get"),
			"/algorithms",
			c.GetAlgorithms,
		},
		{
			"GetNearestNode",
			strings.ToUpper("Get"),
			"/nodes/nearest",
			c.GetNearestNode,
		},
		{
			"CreateSession",
			strings.ToUpper("Post"),
			"/sessions",
			c.CreateSession,
		},
		{
			"StartSearch",
			strings.ToUpper("Post"),
			"/sessions/{id}/start",
			c.StartSearch,
		},
		{
			"NextSteps",
			strings.ToUpper("Post"),
			"/sessions/{id}/step",
			c.NextSteps,
		},
		{
			"ResetSession",
			strings.ToUpper("Post"),
			"/sessions/{id}/reset",
			c.ResetSession,
		},
		{
			"DeleteSession",
			strings.ToUpper("Delete"),
			"/sessions/{id}",
			c.DeleteSession,
		},
		{
			"GetRoute",
			strings.ToUpper("Get"),
			"/sessions/{id}/route",
			c.GetRoute,
		},
	}
}

func (c *DefaultApiController) respond(w http.ResponseWriter, r *http.Request, result ImplResponse, err error) {
	// If an error occurred, encode the error with the status code
	if err != nil {
		c.errorHandler(w, r, err, &result)
		return
	}
	// If no error, encode the body and the result code
	allowCrossOrigin(w, r.Method)
	EncodeJSONResponse(result.Body, &result.Code, w)
}

// GetAlgorithms - List the selectable algorithms
func (c *DefaultApiController) GetAlgorithms(w http.ResponseWriter, r *http.Request) {
	result, err := c.service.GetAlgorithms(r.Context())
	c.respond(w, r, result, err)
}

// GetNearestNode - Find the node of the base graph which is closest to lat/lon
func (c *DefaultApiController) GetNearestNode(w http.ResponseWriter, r *http.Request) {
	lat, err := parseFloatParameter(r, "lat")
	if err != nil {
		c.errorHandler(w, r, err, nil)
		return
	}
	lon, err := parseFloatParameter(r, "lon")
	if err != nil {
		c.errorHandler(w, r, err, nil)
		return
	}
	point := Point{Lat: lat, Lon: lon}
	if err := AssertPointRequired(point); err != nil {
		c.errorHandler(w, r, err, nil)
		return
	}
	result, err := c.service.GetNearestNode(r.Context(), point)
	c.respond(w, r, result, err)
}

// CreateSession - Extract the region around the origin and bind a new search session to it
func (c *DefaultApiController) CreateSession(w http.ResponseWriter, r *http.Request) {
	sessionRequestParam := SessionRequest{}
	if err := decodeJSONBody(r, &sessionRequestParam); err != nil {
		c.errorHandler(w, r, err, nil)
		return
	}
	if err := AssertSessionRequestRequired(sessionRequestParam); err != nil {
		c.errorHandler(w, r, err, nil)
		return
	}
	result, err := c.service.CreateSession(r.Context(), sessionRequestParam)
	c.respond(w, r, result, err)
}

// StartSearch - Start an algorithm from the session origin to the node closest to the destination
func (c *DefaultApiController) StartSearch(w http.ResponseWriter, r *http.Request) {
	startRequestParam := StartRequest{}
	if err := decodeJSONBody(r, &startRequestParam); err != nil {
		c.errorHandler(w, r, err, nil)
		return
	}
	if err := AssertStartRequestRequired(startRequestParam); err != nil {
		c.errorHandler(w, r, err, nil)
		return
	}
	result, err := c.service.StartSearch(r.Context(), mux.Vars(r)["id"], startRequestParam)
	c.respond(w, r, result, err)
}

// NextSteps - Perform steps of the active algorithm
func (c *DefaultApiController) NextSteps(w http.ResponseWriter, r *http.Request) {
	stepRequestParam := StepRequest{}
	if err := decodeJSONBody(r, &stepRequestParam); err != nil {
		c.errorHandler(w, r, err, nil)
		return
	}
	if err := AssertStepRequestRequired(stepRequestParam); err != nil {
		c.errorHandler(w, r, err, nil)
		return
	}
	result, err := c.service.NextSteps(r.Context(), mux.Vars(r)["id"], stepRequestParam)
	c.respond(w, r, result, err)
}

// ResetSession - Drop the active algorithm of the session
func (c *DefaultApiController) ResetSession(w http.ResponseWriter, r *http.Request) {
	result, err := c.service.ResetSession(r.Context(), mux.Vars(r)["id"])
	c.respond(w, r, result, err)
}

func (c *DefaultApiController) DeleteSession(w http.ResponseWriter, r *http.Request) {
	result, err := c.service.DeleteSession(r.Context(), mux.Vars(r)["id"])
	c.respond(w, r, result, err)
}

// GetRoute - The found route as GeoJSON
func (c *DefaultApiController) GetRoute(w http.ResponseWriter, r *http.Request) {
	result, err := c.service.GetRoute(r.Context(), mux.Vars(r)["id"])
	c.respond(w, r, result, err)
}
