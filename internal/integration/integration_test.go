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
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"quiz-builder-service/internal/app"
	"quiz-builder-service/internal/domain"
	"quiz-builder-service/internal/infra/memory"
	pgstore "quiz-builder-service/internal/infra/postgres"
	pgmigrations "quiz-builder-service/internal/infra/postgres/migrations"
	infraredis "quiz-builder-service/internal/infra/redis"
)

// TestAuthorAndTakeQuizEndToEnd exercises the full path on real backends:
// save a quiz into Postgres through the editor, find it via the catalog,
// then run a scored attempt reading through the cache, with attempt liveness
// tracked in Redis.
func TestAuthorAndTakeQuizEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	applyMigrations(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	store := memory.NewQuizCache(pgstore.NewQuizStore(pool), 5*time.Minute)
	editor := app.NewEditor(store)
	catalog := app.NewCatalog(store)
	sessions := infraredis.NewSessionStore(redisClient, 5*time.Minute)

	draft := app.NewDraft().
		SetName("Arithmetic").
		SetTimer(1).
		AddQuestion().SetPrompt(0, "What is 2 + 2?").
		SetAnswer(0, 0, "3").
		AddAnswer(0).SetAnswer(0, 1, "4").
		AddAnswer(0).SetAnswer(0, 2, "5").
		ToggleCorrect(0, 0).ToggleCorrect(0, 1).
		SetPoints(0, 3)

	stored, err := editor.Save(ctx, draft)
	if err != nil {
		t.Fatalf("save quiz: %v", err)
	}
	if stored.ID == 0 {
		t.Fatalf("expected minted id")
	}

	found, err := catalog.Search(ctx, "arith")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 || found[0].ID != stored.ID {
		t.Fatalf("expected saved quiz in catalog, got %+v", found)
	}

	quiz, err := store.GetByID(ctx, stored.ID)
	if err != nil {
		t.Fatalf("load for attempt: %v", err)
	}
	session := app.NewSession("attempt-1", quiz)
	sessions.Put("attempt-1", session)
	defer sessions.Delete("attempt-1")

	if err := session.Select(1); err != nil {
		t.Fatalf("select: %v", err)
	}
	if score := session.Submit(); score != 3 {
		t.Fatalf("expected score 3, got %d", score)
	}

	reviews, err := session.Review()
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if reviews[0].Marks[1] != domain.MarkCorrect {
		t.Fatalf("expected selected correct option marked correct, got %v", reviews[0].Marks)
	}

	if err := catalog.Remove(ctx, stored.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := store.GetByID(ctx, stored.ID); err != domain.ErrQuizNotFound {
		t.Fatalf("expected quiz gone after remove, got %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
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
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
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

func applyMigrations(t *testing.T, ctx context.Context, dsn string) {
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
