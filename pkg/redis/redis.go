package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config is bound from REDIS_* variables. An empty URL disables Redis.
type Config struct {
	URL          string `split_words:"true"`
	ReadTimeout  int    `split_words:"true" default:"3"`
	WriteTimeout int    `split_words:"true" default:"3"`
	DialTimeout  int    `split_words:"true" default:"5"`
}

func (r *Config) Enabled() bool { return r.URL != "" }

// Options parses the URL and applies the configured timeouts.
func (r *Config) Options() (*redis.Options, error) {
	opts, err := redis.ParseURL(r.URL)
	if err != nil {
		return nil, err
	}

	opts.ReadTimeout = time.Duration(r.ReadTimeout) * time.Second
	opts.WriteTimeout = time.Duration(r.WriteTimeout) * time.Second
	opts.DialTimeout = time.Duration(r.DialTimeout) * time.Second
	return opts, nil
}

func (r *Config) New(ctx context.Context) (*redis.Client, error) {
	opts, err := r.Options()
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

func (r *Config) MustNew(ctx context.Context) *redis.Client {
	client, err := r.New(ctx)
	if err != nil {
		panic(err)
	}

	return client
}
