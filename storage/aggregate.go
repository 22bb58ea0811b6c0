package storage

import (
	"context"
	"fmt"

	"github.com/km-arc/go-capability/framework/capability"
)

// ClientAggregate is the ClientStorage bound for a strategy configuration.
// It forwards each call to the pool member named by URLConfig.StorageType
// and returns that member's result unchanged.
type ClientAggregate struct {
	pool *capability.Pool[ClientStorage]
}

var (
	_ ClientStorage = (*ClientAggregate)(nil)
	_ URLVerifier   = (*ClientAggregate)(nil)
)

// NewClientAggregate is the aggregate constructor passed to
// capability.NewStrategy.
func NewClientAggregate(pool *capability.Pool[ClientStorage]) ClientStorage {
	return &ClientAggregate{pool: pool}
}

func (a *ClientAggregate) PresignURL(ctx context.Context, cfg URLConfig) (PresignedURL, error) {
	member, err := a.pool.Route(cfg.StorageType)
	if err != nil {
		return PresignedURL{}, err
	}
	return member.PresignURL(ctx, cfg)
}

// VerifyURL checks token with the pool member named by cfg.StorageType.
// Members that do not serve their own URLs reject every token.
func (a *ClientAggregate) VerifyURL(cfg URLConfig, token string) error {
	member, err := a.pool.Route(cfg.StorageType)
	if err != nil {
		return err
	}
	v, ok := member.(URLVerifier)
	if !ok {
		return fmt.Errorf("%w: %s URLs are not served here", ErrInvalidSignature, cfg.StorageType)
	}
	return v.VerifyURL(cfg, token)
}

// StorageTypes lists the backends calls can be routed to.
func (a *ClientAggregate) StorageTypes() []string {
	return a.pool.Tags()
}
