package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"vmm-exam-service/internal/app"
	"vmm-exam-service/internal/catalog"
	"vmm-exam-service/internal/config"
	"vmm-exam-service/internal/domain"
	pgloader "vmm-exam-service/internal/infra/postgres"
	pgmigrations "vmm-exam-service/internal/infra/postgres/migrations"
	infraredis "vmm-exam-service/internal/infra/redis"
	"vmm-exam-service/internal/validator"
)

// idleScheduler never fires; the test drives submission explicitly.
type idleScheduler struct{}

func (idleScheduler) Schedule(time.Duration, func()) func() { return func() {} }

func TestExamSubmissionEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateAndSeed(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	log := zerolog.Nop()
	cfg := config.Default()
	rnd := app.NewRand(7)
	examPolicy, err := app.NewScoringPolicy(cfg.Scoring.Exam, rnd)
	if err != nil {
		t.Fatalf("exam policy: %v", err)
	}
	lookupPolicy, err := app.NewScoringPolicy(cfg.Scoring.Lookup, rnd)
	if err != nil {
		t.Fatalf("lookup policy: %v", err)
	}

	records := infraredis.NewRecordStore(redisClient, 0)
	results := app.NewResultStore(records, log)
	leaderboard := app.NewLeaderboardManager(records, rnd, log)
	banks := infraredis.NewBankRepository(redisClient, pgloader.NewBankLoader(pool), 5*time.Minute)
	sessions := infraredis.NewSessionStore(redisClient, 5*time.Minute, log)

	exam := app.NewExamService(sessions, banks, catalog.ExamBankID, app.SessionDeps{
		Policy:           examPolicy,
		Results:          results,
		Validator:        validator.New(),
		Scheduler:        idleScheduler{},
		Rand:             rnd,
		IdentifierPrefix: cfg.Exam.IdentifierPrefix,
		Log:              log,
	}, leaderboard)

	session, err := exam.Begin(ctx, "ctx-int", domain.Candidate{
		Name: "Asha", City: "Lucknow", Phone: "9876543210", Email: "asha@example.com", Branch: "Lucknow",
	}, app.SessionHooks{})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	for _, q := range session.Bank().Questions {
		if err := exam.Answer(ctx, "ctx-int", q.ID, q.Options[0].ID); err != nil {
			t.Fatalf("answer %d: %v", q.ID, err)
		}
	}

	result, err := exam.Submit(ctx, "ctx-int", false)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !strings.HasPrefix(result.Identifier, "VMM25-LU-") || result.Score < 0 || result.Score > 100 {
		t.Fatalf("unexpected result %+v", result)
	}

	if n, err := redisClient.Exists(ctx, "vmm:bank:"+catalog.ExamBankID, "vmm:result:current:ctx-int").Result(); err != nil || n != 2 {
		t.Fatalf("expected bank cache and result slot in redis, got n=%d err=%v", n, err)
	}

	lookup := app.NewResultLookupService(results, leaderboard, lookupPolicy, rnd, log)
	found, err := lookup.Resolve(ctx, "ctx-int", result.Identifier)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if found.Score != result.Score || found.Name != "Asha" {
		t.Fatalf("expected own result back, got %+v", found)
	}

	if len(leaderboard.List(ctx).Entries) != app.LeaderboardSize {
		t.Fatalf("expected a full leaderboard")
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "vmm", "POSTGRES_PASSWORD": "vmmpass", "POSTGRES_DB": "vmmdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://vmm:vmmpass@%s:%s/vmmdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateAndSeed(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := pgmigrations.SeedBanks(ctx, db, catalog.ExamBank(), catalog.PracticeBank()); err != nil {
		t.Fatalf("seed banks: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
