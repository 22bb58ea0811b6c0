package inmemory

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/km-arc/go-capability/storage"
)

// Bucket is a ServerStorage held in process memory. It is safe for
// concurrent use.
type Bucket struct {
	name     string
	maxBytes int
	log      *logrus.Entry
	now      func() time.Time

	mu      sync.RWMutex
	objects map[string]object
}

type object struct {
	data []byte
	meta storage.Object
}

var _ storage.ServerStorage = (*Bucket)(nil)

// NewBucket returns an empty bucket. maxBytes <= 0 disables the size limit.
func NewBucket(name string, maxBytes int, log *logrus.Entry) *Bucket {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Bucket{
		name:     name,
		maxBytes: maxBytes,
		log:      log.WithField("bucket", name),
		now:      time.Now,
		objects:  make(map[string]object),
	}
}

// Name returns the configured bucket name.
func (b *Bucket) Name() string { return b.name }

func (b *Bucket) Put(ctx context.Context, key string, body []byte, contentType string) (storage.Object, error) {
	if err := ctx.Err(); err != nil {
		return storage.Object{}, err
	}
	if key == "" {
		return storage.Object{}, fmt.Errorf("inmemory: %s: empty object key", b.name)
	}
	if b.maxBytes > 0 && len(body) > b.maxBytes {
		return storage.Object{}, fmt.Errorf("inmemory: %s: object %q is %d bytes, limit is %d: %w", b.name, key, len(body), b.maxBytes, storage.ErrTooLarge)
	}

	sum := md5.Sum(body)
	meta := storage.Object{
		Key:         key,
		Size:        int64(len(body)),
		ContentType: contentType,
		ETag:        hex.EncodeToString(sum[:]),
		ModTime:     b.now().UTC(),
	}
	data := make([]byte, len(body))
	copy(data, body)

	b.mu.Lock()
	b.objects[key] = object{data: data, meta: meta}
	b.mu.Unlock()

	b.log.WithFields(logrus.Fields{"key": key, "size": meta.Size}).Debug("object stored")
	return meta, nil
}

func (b *Bucket) Get(ctx context.Context, key string) ([]byte, storage.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, storage.Object{}, err
	}
	b.mu.RLock()
	o, ok := b.objects[key]
	b.mu.RUnlock()
	if !ok {
		return nil, storage.Object{}, fmt.Errorf("%w: %s/%s", storage.ErrNotFound, b.name, key)
	}

	data := make([]byte, len(o.data))
	copy(data, o.data)
	return data, o.meta, nil
}

func (b *Bucket) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.objects[key]; !ok {
		return fmt.Errorf("%w: %s/%s", storage.ErrNotFound, b.name, key)
	}
	delete(b.objects, key)
	return nil
}

func (b *Bucket) List(ctx context.Context, prefix string) ([]storage.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	out := make([]storage.Object, 0, len(b.objects))
	for key, o := range b.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, o.meta)
		}
	}
	b.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
