package openapi_server

import (
	"context"
	"net/http"
)

// DefaultApiRouter defines the required methods for binding the api requests to a responses for the DefaultApi
// The DefaultApiRouter implementation should parse necessary information from the http request,
// pass the data to a DefaultApiServicer to perform the required actions, then write the service results to the http response.
type DefaultApiRouter interface {
	GetAlgorithms(http.ResponseWriter, *http.Request)
	GetNearestNode(http.ResponseWriter, *http.Request)
	CreateSession(http.ResponseWriter, *http.Request)
	StartSearch(http.ResponseWriter, *http.Request)
	NextSteps(http.ResponseWriter, *http.Request)
	ResetSession(http.ResponseWriter, *http.Request)
	DeleteSession(http.ResponseWriter, *http.Request)
	GetRoute(http.ResponseWriter, *http.Request)
}

// DefaultApiServicer defines the api actions for the DefaultApi service
type DefaultApiServicer interface {
	GetAlgorithms(context.Context) (ImplResponse, error)
	GetNearestNode(context.Context, Point) (ImplResponse, error)
	CreateSession(context.Context, SessionRequest) (ImplResponse, error)
	StartSearch(context.Context, string, StartRequest) (ImplResponse, error)
	NextSteps(context.Context, string, StepRequest) (ImplResponse, error)
	ResetSession(context.Context, string) (ImplResponse, error)
	DeleteSession(context.Context, string) (ImplResponse, error)
	GetRoute(context.Context, string) (ImplResponse, error)
}
