// Package storage defines the storage capabilities applications require and
// the aggregate that routes client-side calls across several backends.
//
// Server-side storage is bound as named instances (one per bucket or
// account). Client-side storage, which hands out presigned URLs, is bound
// as a strategy: every configured backend joins a pool and the aggregate
// picks one per call from URLConfig.StorageType.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/km-arc/go-capability/framework/capability"
)

const (
	ServerStorageType capability.Type = "ServerStorage"
	ClientStorageType capability.Type = "ClientStorage"
)

var (
	// ErrNotFound is returned for a key with no object.
	ErrNotFound = errors.New("storage: object not found")
	// ErrTooLarge is returned when an object exceeds the backend's size limit.
	ErrTooLarge = errors.New("storage: object too large")
	// ErrInvalidSignature is returned for a presigned URL that is forged,
	// expired, or used with another key or method.
	ErrInvalidSignature = errors.New("storage: invalid or expired signature")
)

// Object describes one stored object.
type Object struct {
	Key         string    `json:"key"`
	Size        int64     `json:"size"`
	ContentType string    `json:"contentType,omitempty"`
	ETag        string    `json:"etag,omitempty"`
	ModTime     time.Time `json:"modTime"`
}

// ServerStorage is object storage used from the server.
type ServerStorage interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (Object, error)
	Get(ctx context.Context, key string) ([]byte, Object, error)
	Delete(ctx context.Context, key string) error
	// List returns the objects whose key starts with prefix, sorted by key.
	List(ctx context.Context, prefix string) ([]Object, error)
}

// URLConfig asks for a presigned URL. StorageType names the backend that
// must sign it.
type URLConfig struct {
	StorageType string        `json:"storageType"`
	Key         string        `json:"key"`
	Method      string        `json:"method,omitempty"` // GET (default) or PUT
	TTL         time.Duration `json:"ttl,omitempty"`
}

// PresignedURL is a URL a client can use directly against a backend.
type PresignedURL struct {
	URL         string    `json:"url"`
	Method      string    `json:"method"`
	StorageType string    `json:"storageType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// ClientStorage hands out URLs for direct client access.
type ClientStorage interface {
	PresignURL(ctx context.Context, cfg URLConfig) (PresignedURL, error)
}

// URLVerifier is implemented by ClientStorage backends whose presigned URLs
// are served by this process. cfg carries the storage type, key and method
// of the incoming request.
type URLVerifier interface {
	VerifyURL(cfg URLConfig, token string) error
}
