//go:build integration

package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/barracksmedia/site-assistant/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testDB *Client

// TestMain starts one SurrealDB container for the whole package.
func TestMain(m *testing.M) {
	// Ryuk breaks in some CI sandboxes.
	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v2.3.7",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--log", "info", "--user", "root", "--pass", "root"},
			WaitingFor:   wait.ForLog("Started web server").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("Failed to start SurrealDB container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		log.Fatalf("Failed to get container host: %v", err)
	}
	if host == "" || host == "null" {
		host = "localhost"
	}
	port, err := container.MappedPort(ctx, "8000")
	if err != nil {
		log.Fatalf("Failed to get mapped port: %v", err)
	}

	testDB, err = NewClient(ctx, Config{
		URL:       fmt.Sprintf("ws://%s:%s/rpc", host, port.Port()),
		Namespace: "test",
		Database:  "test",
		Username:  "root",
		Password:  "root",
		AuthLevel: "root",
	}, nil)
	if err != nil {
		log.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := testDB.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	code := m.Run()

	_ = testDB.Close(ctx)
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func reset(t *testing.T) {
	t.Helper()
	require.NoError(t, testDB.WipeData(context.Background()))
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func boolPtr(b bool) *bool    { return &b }

func TestSeedAndQueryServices(t *testing.T) {
	reset(t)
	ctx := context.Background()

	seeded, skipped, err := testDB.Seed(ctx, []models.ServiceRecord{
		{Name: "Hosting Services", Description: "Reliable hosting.", SortOrder: intPtr(40)},
		{Name: "Editing Services", Description: "Pro edits.", Features: []string{"Tighter pacing"}, BookingPath: strPtr("/onboarding/editing"), SortOrder: intPtr(30)},
		{Name: "Retired", Active: boolPtr(false)},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, seeded)
	assert.Equal(t, 1, skipped)

	records, err := testDB.Services(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Editing Services", records[0].Name, "ordered by sort_order")
	require.NotNil(t, records[0].BookingPath)
	assert.Equal(t, "/onboarding/editing", *records[0].BookingPath)

	svc, ok := records[0].ToService()
	require.True(t, ok)
	assert.Equal(t, "editing-services", svc.ID)
	assert.Equal(t, []string{"Tighter pacing"}, svc.Features)
}

func TestSeedAndQueryEpisodes(t *testing.T) {
	reset(t)
	ctx := context.Background()

	older := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	_, _, err := testDB.Seed(ctx, nil, []models.EpisodeRecord{
		{Title: "Draft to Published", ShowTitle: strPtr("Authors After Action"), PublishedAt: &older, Tags: []string{"writing"}},
		{Title: "Coming Home", ShowTitle: strPtr("The Forgotten Oath"), PublishedAt: &newer, PagePath: strPtr("/podcasts/the-forgotten-oath")},
	})
	require.NoError(t, err)

	records, err := testDB.Episodes(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Coming Home", records[0].Title, "newest first")
	require.NotNil(t, records[0].ShowTitle)
	assert.Equal(t, "The Forgotten Oath", *records[0].ShowTitle)

	ep, ok := records[0].ToEpisode()
	require.True(t, ok)
	assert.Equal(t, "/podcasts/the-forgotten-oath", ep.Link())
	require.NotNil(t, ep.PublishedAt)
	assert.True(t, newer.Equal(*ep.PublishedAt))
}

func TestPing(t *testing.T) {
	assert.NoError(t, testDB.Ping(context.Background()))
}

func TestGetServiceNotFound(t *testing.T) {
	reset(t)
	_, err := testDB.QueryGetService(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogCounts(t *testing.T) {
	reset(t)
	ctx := context.Background()
	_, _, err := testDB.Seed(ctx,
		[]models.ServiceRecord{{Name: "Web Design"}},
		[]models.EpisodeRecord{{Title: "One"}, {Title: "Two"}},
	)
	require.NoError(t, err)

	counts, err := testDB.QueryCatalogCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, CatalogCounts{Services: 1, Episodes: 2}, counts)
}

func TestRateLimitWindow(t *testing.T) {
	reset(t)
	ctx := context.Background()
	store := NewRateLimitStore(testDB)
	now := time.UnixMilli(1_700_000_000_000)

	for i := 1; i <= 3; i++ {
		count, resetAt, err := store.Increment(ctx, "203.0.113.7", time.Minute, now)
		require.NoError(t, err)
		assert.Equal(t, i, count)
		assert.Equal(t, now.Add(time.Minute).UnixMilli(), resetAt.UnixMilli())
	}

	later := now.Add(time.Minute + time.Millisecond)
	count, resetAt, err := store.Increment(ctx, "203.0.113.7", time.Minute, later)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "window restarts after reset")
	assert.Equal(t, later.Add(time.Minute).UnixMilli(), resetAt.UnixMilli())

	purged, err := store.Purge(ctx, later.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, purged)
}

func TestRateLimitConcurrentIncrements(t *testing.T) {
	reset(t)
	ctx := context.Background()
	store := NewRateLimitStore(testDB)
	now := time.Now()

	const n = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := map[int]bool{}
	successes := 0
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			count, _, err := store.Increment(ctx, "burst", time.Minute, now)
			if err != nil {
				return
			}
			mu.Lock()
			successes++
			seen[count] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	// Every successful increment observed a distinct count.
	assert.Len(t, seen, successes)
	for c := range seen {
		assert.True(t, c >= 1 && c <= n)
	}
}
