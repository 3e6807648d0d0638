// Package workspace composes the endpoint and config stores, a dispatch
// server, and a request history into the operations a user-facing surface
// (CLI, desktop shell, editor plugin) needs for one scope.
package workspace

import (
	"time"

	"github.com/getmockd/mockhost/pkg/endpoint"
)

// EventType names a workspace change.
type EventType string

const (
	EventEndpointCreated EventType = "endpoint.created"
	EventEndpointUpdated EventType = "endpoint.updated"
	EventEndpointDeleted EventType = "endpoint.deleted"
	EventServerStarted   EventType = "server.started"
	EventServerStopped   EventType = "server.stopped"
)

// Event describes one change. Endpoint is set for endpoint events (for
// deletes only EndpointID); URL is set for EventServerStarted.
type Event struct {
	Type       EventType          `json:"type"`
	Scope      string             `json:"scope"`
	EndpointID string             `json:"endpointId,omitempty"`
	Endpoint   *endpoint.Endpoint `json:"endpoint,omitempty"`
	URL        string             `json:"url,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
}

// EventListener receives events synchronously, in subscription order.
type EventListener func(Event)

// StatusInfo summarizes a workspace.
type StatusInfo struct {
	Scope         string   `json:"scope"`
	Status        string   `json:"status"`
	Port          int      `json:"port,omitempty"`
	URL           string   `json:"url,omitempty"`
	Addresses     []string `json:"addresses,omitempty"`
	EndpointCount int      `json:"endpointCount"`
	EnabledCount  int      `json:"enabledCount"`
	RequestCount  int      `json:"requestCount"`
}
