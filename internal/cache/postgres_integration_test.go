package cache_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"

	"github.com/gyeh/chartmerge/internal/cache"
)

const (
	testPort     = 15433
	testDB       = "chartmergetest"
	testUser     = "postgres"
	testPassword = "postgres"
)

var testDSN string

func TestMain(m *testing.M) {
	if os.Getenv("CHARTMERGE_SKIP_PG_TESTS") != "" {
		fmt.Fprintln(os.Stderr, "SKIP: postgres cache tests disabled")
		os.Exit(0)
	}

	testDSN = fmt.Sprintf("postgresql://%s:%s@localhost:%d/%s?sslmode=disable",
		testUser, testPassword, testPort, testDB)

	pg := embeddedpostgres.NewDatabase(
		embeddedpostgres.DefaultConfig().
			Port(uint32(testPort)).
			Database(testDB).
			Username(testUser).
			Password(testPassword).
			Version(embeddedpostgres.V16).
			StartTimeout(30 * time.Second),
	)

	if err := pg.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start embedded postgres: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	if err := pg.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to stop embedded postgres: %v\n", err)
	}

	os.Exit(code)
}

func setupStore(t *testing.T) *cache.Postgres {
	t.Helper()
	ctx := context.Background()

	store, err := cache.NewPostgres(ctx, testDSN)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := store.Purge(ctx); err != nil {
		t.Fatalf("purge: %v", err)
	}
	t.Cleanup(store.Close)
	return store
}

func TestPostgres_GetSetRoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if _, ok, _ := store.Get(ctx, "loinc:2345-7"); ok {
		t.Fatal("expected miss on empty table")
	}

	if err := store.Set(ctx, "loinc:2345-7", []byte(`{"name":"Glucose"}`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := store.Get(ctx, "loinc:2345-7")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(v) != `{"name":"Glucose"}` {
		t.Errorf("value changed in cache: %q", v)
	}
}

func TestPostgres_SetOverwrites(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	store.Set(ctx, "k", []byte("old"), time.Hour)
	store.Set(ctx, "k", []byte("new"), time.Hour)

	v, ok, _ := store.Get(ctx, "k")
	if !ok || string(v) != "new" {
		t.Errorf("expected overwritten value, got ok=%v v=%q", ok, v)
	}
	if n, _ := store.Len(ctx); n != 1 {
		t.Errorf("expected 1 entry after overwrite, got %d", n)
	}
}

func TestPostgres_ExpiredEntryIsMiss(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("v"), -time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Error("expected miss for expired entry")
	}
	if n, _ := store.Len(ctx); n != 0 {
		t.Errorf("expected 0 live entries, got %d", n)
	}
}

func TestPostgres_Purge(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	store.Set(ctx, "a", []byte("1"), time.Hour)
	store.Set(ctx, "b", []byte("2"), time.Hour)
	if err := store.Purge(ctx); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if n, _ := store.Len(ctx); n != 0 {
		t.Errorf("expected empty table after purge, got %d", n)
	}
}
