// Package backend encapsula a conexão com o Redis compartilhado por
// ResultStore e pelo controle de admissão: aberta uma vez na subida,
// injetada nos stores e fechada no shutdown.
package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string
	Password string
	DB       int

	// PingTimeout limita a checagem inicial. Padrão: 2s.
	PingTimeout time.Duration
}

// Backend é o handle explícito para o Redis.
type Backend struct {
	rdb *redis.Client
}

// Open conecta e faz ping. Erro aqui deve abortar a subida.
func Open(ctx context.Context, cfg Config) (*Backend, error) {
	if cfg.Addr == "" {
		return nil, errors.New("backend: redis address is required")
	}
	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	b := &Backend{rdb: rdb}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := b.Ping(pingCtx); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return b, nil
}

// Client expõe o cliente para os stores.
func (b *Backend) Client() *redis.Client { return b.rdb }

func (b *Backend) Ping(ctx context.Context) error {
	if err := b.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("backend: redis ping: %w", err)
	}
	return nil
}

func (b *Backend) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
