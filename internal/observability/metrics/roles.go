// Package metrics holds the named metric emitters shared by services.
package metrics

import (
	"time"

	obserrors "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/observability/errors"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/observability/statsd"
)

// Metric names.
const (
	RoleResolution         = "role.resolution"
	RoleResolutionDuration = "role.resolution.duration"
	RoleLookupError        = "role.lookup_error"
	SessionCheck           = "session.check"
	MirrorWrite            = "mirror.write"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// RoleMetric captures one completed role resolution.
type RoleMetric struct {
	Role     string
	Source   string
	Duration time.Duration
}

// EmitRoleResolution counts a resolution and records its latency.
func EmitRoleResolution(sink statsd.Sink, in RoleMetric) {
	if sink == nil {
		return
	}
	role := in.Role
	if role == "" {
		role = "none"
	}
	tags := map[string]string{"role": role, "source": in.Source}
	sink.Count(RoleResolution, 1, tags)
	if in.Duration > 0 {
		sink.Timing(RoleResolutionDuration, in.Duration, CloneTags(tags))
	}
}

// EmitLookupError counts a swallowed cascade step failure.
func EmitLookupError(sink statsd.Sink, step string, err error) {
	if sink == nil {
		return
	}
	tags := map[string]string{"step": step}
	if class := obserrors.Classify(err); class != "" {
		tags["error_class"] = class
	}
	sink.Count(RoleLookupError, 1, tags)
}

// EmitOutcome counts a success/error outcome for name (session checks, mirror writes).
func EmitOutcome(sink statsd.Sink, name string, err error) {
	if sink == nil {
		return
	}
	tags := map[string]string{"result": ResultSuccess}
	if err != nil {
		tags["result"] = ResultError
		if class := obserrors.Classify(err); class != "" {
			tags["error_class"] = class
		}
	}
	sink.Count(name, 1, tags)
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
