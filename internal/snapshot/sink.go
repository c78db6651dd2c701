package snapshot

import (
	"context"
	"strings"

	"restaurant-order-service/internal/storage"

	"github.com/redis/go-redis/v9"
)

// Sink persists one rendered document.
type Sink interface {
	Put(ctx context.Context, key string, doc []byte) error
}

type RedisSink struct {
	client *redis.Client
	prefix string
}

func NewRedisSink(client *redis.Client, prefix string) *RedisSink {
	return &RedisSink{client: client, prefix: prefix}
}

func (s *RedisSink) Put(ctx context.Context, key string, doc []byte) error {
	return s.client.Set(ctx, s.prefix+key, doc, 0).Err()
}

type ObjectSink struct {
	objects storage.Objects
	prefix  string
}

func NewObjectSink(objects storage.Objects, prefix string) *ObjectSink {
	return &ObjectSink{objects: objects, prefix: strings.TrimRight(prefix, "/")}
}

func (s *ObjectSink) Put(ctx context.Context, key string, doc []byte) error {
	name := strings.ReplaceAll(key, ":", "/") + ".json"
	_, err := s.objects.PutObject(ctx, s.prefix+"/"+name, doc, "application/json", "no-cache")
	return err
}
