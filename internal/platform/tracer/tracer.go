// Package tracer is a small tracing abstraction used by the domain services.
//
// Implementations:
//   - NoopTracer: tests and processes without a tracing backend
//   - OTelTracer: OpenTelemetry adapter over the global provider
package tracer

import (
	"context"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks it failed.
	// End must be called exactly once, typically via defer.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

// Attribute keys shared by the services.
const (
	AttrUserID     = "user.id"
	AttrCallerID   = "caller.id"
	AttrArtistID   = "artist.id"
	AttrAlbumID    = "album.id"
	AttrTrackID    = "track.id"
	AttrPlaylistID = "playlist.id"
	AttrBatchSize  = "batch.size"
)
