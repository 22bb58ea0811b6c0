// Package inmemory is a storage backend kept in process memory. It provides
// both storage capabilities under the implementation name "memory":
//
//	host.UseImplementation(inmemory.NewServer) // ServerStorage, named-instance capable
//	host.UseImplementation(inmemory.NewClient) // ClientStorage, strategy capable
//
// Server settings:
//
//	bucket:         required, 3-63 lowercase letters, digits, dots or dashes
//	maxObjectBytes: optional object size limit
//
// Client settings:
//
//	baseURL:    optional http(s) URL presigned URLs are built under; the
//	            default is served by storage/httpapi for the "primary" instance
//	presignTTL: optional default lifetime in seconds (900)
package inmemory

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/km-arc/go-capability/framework/capability"
	"github.com/km-arc/go-capability/framework/container"
	"github.com/km-arc/go-capability/framework/validation"
	"github.com/km-arc/go-capability/storage"
)

// Name is the implementation name of both capabilities.
const Name = "memory"

const (
	serverSettingsKey = "inmemory.server.settings"
	clientSettingsKey = "inmemory.client.settings"

	defaultBaseURL = "http://localhost:8000/storage/primary/signed"
	defaultTTL     = 900
)

var (
	serverRules = validation.Rules{
		"bucket":         `required|between:3,63|regex:^[a-z0-9][a-z0-9.-]*$`,
		"maxObjectBytes": "nullable|integer",
	}
	clientRules = validation.Rules{
		"baseURL":    "nullable|url",
		"presignTTL": "nullable|integer",
	}
)

// ServerSettings configures one Bucket.
type ServerSettings struct {
	Bucket         string `mapstructure:"bucket"`
	MaxObjectBytes int    `mapstructure:"maxObjectBytes"`
}

// ClientSettings configures one Signer.
type ClientSettings struct {
	BaseURL    string `mapstructure:"baseURL"`
	PresignTTL int    `mapstructure:"presignTTL"`
}

// ── ServerStorage ────────────────────────────────────────────────────────────

type server struct {
	capability.Base
}

// NewServer returns the ServerStorage implementation.
func NewServer() capability.Implementation {
	return capability.Named(&server{Base: capability.NewBase(storage.ServerStorageType, Name)})
}

func (s *server) Register(_ context.Context, c container.Scope, cfg capability.Config) error {
	if err := check(cfg, serverRules); err != nil {
		return err
	}
	var settings ServerSettings
	if err := cfg.Decode(&settings); err != nil {
		return err
	}

	c.Instance(serverSettingsKey, settings)
	c.Singleton(string(storage.ServerStorageType), func(scope container.Scope) (any, error) {
		settings, err := container.Resolve[ServerSettings](scope, serverSettingsKey)
		if err != nil {
			return nil, err
		}
		log := logger(scope).WithField("instance", cfg.InstanceName)
		return NewBucket(settings.Bucket, settings.MaxObjectBytes, log), nil
	})
	return nil
}

// ── ClientStorage ────────────────────────────────────────────────────────────

type client struct {
	capability.Base
}

// NewClient returns the ClientStorage implementation. Besides a single
// binding it can join a strategy pool and build the routing aggregate.
func NewClient() capability.Implementation {
	return capability.NewStrategy(
		&client{Base: capability.NewBase(storage.ClientStorageType, Name)},
		storage.NewClientAggregate,
	)
}

func (cl *client) Register(_ context.Context, c container.Scope, cfg capability.Config) error {
	if err := check(cfg, clientRules); err != nil {
		return err
	}
	settings := ClientSettings{BaseURL: defaultBaseURL, PresignTTL: defaultTTL}
	if err := cfg.Decode(&settings); err != nil {
		return err
	}

	c.Instance(clientSettingsKey, settings)
	c.Singleton(string(storage.ClientStorageType), func(scope container.Scope) (any, error) {
		settings, err := container.Resolve[ClientSettings](scope, clientSettingsKey)
		if err != nil {
			return nil, err
		}
		return NewSigner(Name, settings.BaseURL, time.Duration(settings.PresignTTL)*time.Second), nil
	})
	return nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func check(cfg capability.Config, rules validation.Rules) error {
	data := make(map[string]string, len(rules))
	for field := range rules {
		data[field] = cfg.Field(field)
	}
	if err := validation.Make(data, rules).Validate(); err != nil {
		return fmt.Errorf("inmemory: invalid settings: %w", err)
	}
	return nil
}

func logger(c container.Scope) *logrus.Entry {
	if log, err := container.Resolve[*logrus.Logger](c, "log"); err == nil {
		return logrus.NewEntry(log)
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
