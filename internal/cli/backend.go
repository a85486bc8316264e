package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"vmm-exam-service/internal/app"
	"vmm-exam-service/internal/catalog"
	"vmm-exam-service/internal/config"
	"vmm-exam-service/internal/infra/memory"
	pgloader "vmm-exam-service/internal/infra/postgres"
	redisstore "vmm-exam-service/internal/infra/redis"
	"vmm-exam-service/internal/infra/sqlite"
)

// backend owns the storage clients selected by config.
type backend struct {
	records app.Persistence
	redis   *redis.Client
	pool    *pgxpool.Pool
	closers []func() error
	log     zerolog.Logger
}

func openBackend(ctx context.Context, cfg config.Config, log zerolog.Logger) (*backend, error) {
	b := &backend{log: log}

	if cfg.Redis.Addr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, b.redis.Close)
	}

	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.pool = pool
		b.closers = append(b.closers, func() error { pool.Close(); return nil })
	}

	switch cfg.Storage.Backend {
	case "", "memory":
		b.records = memory.NewRecordStore()
	case "redis":
		if b.redis == nil {
			b.Close()
			return nil, fmt.Errorf("storage backend redis needs redis.addr")
		}
		if err := b.redis.Ping(ctx).Err(); err != nil {
			b.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		b.records = redisstore.NewRecordStore(b.redis, 0)
	case "sqlite":
		store, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.records = store
		b.closers = append(b.closers, store.Close)
	default:
		b.Close()
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	log.Info().
		Str("storage", cfg.Storage.Backend).
		Bool("redis", b.redis != nil).
		Bool("postgres", b.pool != nil).
		Msg("backend ready")
	return b, nil
}

// bankRepository picks the bank source (Postgres, file or built-in) and the cache in front of it.
func (b *backend) bankRepository(cfg config.Config) app.QuestionRepository {
	var loader memory.BankLoader = memory.NewStaticBankLoader(catalog.Banks())
	switch {
	case b.pool != nil:
		loader = pgloader.NewBankLoader(b.pool)
	case cfg.Questions.File != "":
		loader = memory.NewFileBankLoader(cfg.Questions.File)
	}

	ttl := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
	if b.redis != nil {
		return redisstore.NewBankRepository(b.redis, loader, ttl)
	}
	return memory.NewBankRepository(loader, ttl)
}

func (b *backend) sessionStore(cfg config.Config) app.SessionRepository {
	if b.redis != nil {
		return redisstore.NewSessionStore(b.redis, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute), b.log)
	}
	return memory.NewSessionStore()
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			b.log.Warn().Err(err).Msg("close backend")
		}
	}
	b.closers = nil
}

// policies builds the exam, lookup and practice scoring policies from config.
type policies struct {
	exam, lookup, practice *app.ScoringPolicy
}

func buildPolicies(cfg config.Config, rnd app.Rand) (policies, error) {
	var p policies
	var err error
	if p.exam, err = app.NewScoringPolicy(cfg.Scoring.Exam, rnd); err != nil {
		return p, fmt.Errorf("scoring.exam: %w", err)
	}
	if p.lookup, err = app.NewScoringPolicy(cfg.Scoring.Lookup, rnd); err != nil {
		return p, fmt.Errorf("scoring.lookup: %w", err)
	}
	if p.practice, err = app.NewScoringPolicy(cfg.Scoring.Practice, rnd); err != nil {
		return p, fmt.Errorf("scoring.practice: %w", err)
	}
	return p, nil
}
