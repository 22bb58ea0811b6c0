package inmemory

import (
	"container/heap"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/km-arc/go-capability/storage"
)

// Signer is a ClientStorage issuing opaque, expiring tokens. The URLs it
// returns are only meaningful to Verify on the same Signer.
type Signer struct {
	storageType string
	baseURL     string
	ttl         time.Duration
	now         func() time.Time

	mu     sync.Mutex
	issued map[string]grant
	expiry expiryQueue
}

type grant struct {
	key       string
	method    string
	expiresAt time.Time
}

var (
	_ storage.ClientStorage = (*Signer)(nil)
	_ storage.URLVerifier   = (*Signer)(nil)
)

// NewSigner returns a signer producing URLs under baseURL. ttl is used when
// a request does not carry one.
func NewSigner(storageType, baseURL string, ttl time.Duration) *Signer {
	return &Signer{
		storageType: storageType,
		baseURL:     strings.TrimRight(baseURL, "/"),
		ttl:         ttl,
		now:         time.Now,
		issued:      make(map[string]grant),
	}
}

func (s *Signer) PresignURL(ctx context.Context, cfg storage.URLConfig) (storage.PresignedURL, error) {
	if err := ctx.Err(); err != nil {
		return storage.PresignedURL{}, err
	}
	if cfg.Key == "" {
		return storage.PresignedURL{}, fmt.Errorf("inmemory: presign: empty object key")
	}
	method := strings.ToUpper(cfg.Method)
	switch method {
	case "":
		method = http.MethodGet
	case http.MethodGet, http.MethodPut:
	default:
		return storage.PresignedURL{}, fmt.Errorf("inmemory: presign: unsupported method %q", cfg.Method)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = s.ttl
	}

	token := uuid.NewString()
	expires := s.now().Add(ttl).UTC()

	s.mu.Lock()
	s.expire(s.now())
	s.issued[token] = grant{key: cfg.Key, method: method, expiresAt: expires}
	heap.Push(&s.expiry, pendingGrant{token: token, expiresAt: expires})
	s.mu.Unlock()

	q := url.Values{}
	q.Set("storageType", s.storageType)
	q.Set("token", token)
	q.Set("expires", fmt.Sprint(expires.Unix()))
	return storage.PresignedURL{
		URL:         s.baseURL + "/" + url.PathEscape(cfg.Key) + "?" + q.Encode(),
		Method:      method,
		StorageType: s.storageType,
		ExpiresAt:   expires,
	}, nil
}

// Verify reports whether token grants method on key right now.
func (s *Signer) Verify(token, method, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.issued[token]
	if !ok {
		return false
	}
	if !s.now().Before(g.expiresAt) {
		delete(s.issued, token)
		return false
	}
	return g.key == key && g.method == strings.ToUpper(method)
}

// VerifyURL implements storage.URLVerifier.
func (s *Signer) VerifyURL(cfg storage.URLConfig, token string) error {
	if cfg.StorageType != "" && cfg.StorageType != s.storageType {
		return fmt.Errorf("%w: signed by %s, not %s", storage.ErrInvalidSignature, s.storageType, cfg.StorageType)
	}
	if !s.Verify(token, cfg.Method, cfg.Key) {
		return storage.ErrInvalidSignature
	}
	return nil
}

// Pending returns the number of grants held. Expired grants are dropped
// the next time a URL is issued.
func (s *Signer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.issued)
}

// expire drops every grant that expired by now. Callers hold mu.
func (s *Signer) expire(now time.Time) {
	for s.expiry.Len() > 0 && !now.Before(s.expiry[0].expiresAt) {
		g := heap.Pop(&s.expiry).(pendingGrant)
		delete(s.issued, g.token)
	}
}

type pendingGrant struct {
	token     string
	expiresAt time.Time
}

// expiryQueue is a container/heap of grants ordered by expiry.
type expiryQueue []pendingGrant

func (q expiryQueue) Len() int           { return len(q) }
func (q expiryQueue) Less(i, j int) bool { return q[i].expiresAt.Before(q[j].expiresAt) }
func (q expiryQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *expiryQueue) Push(x any)        { *q = append(*q, x.(pendingGrant)) }
func (q *expiryQueue) Pop() any {
	old := *q
	n := len(old)
	g := old[n-1]
	*q = old[:n-1]
	return g
}
