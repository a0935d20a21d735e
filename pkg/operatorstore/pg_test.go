package operatorstore

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/propchain-labs/bridge-coordinator/pkg/operator"
	"github.com/propchain-labs/bridge-coordinator/pkg/pgutil"
	mghelper "github.com/propchain-labs/bridge-coordinator/pkg/pgutil/migrations"
)

const (
	account1 = "0x1111000000000000000000000000000000001111"
	account2 = "0x2222000000000000000000000000000000002222"
)

func setupStore(t *testing.T) (context.Context, *pgStore) {
	t.Helper()
	requireDockerAccess(t)

	ctx := context.Background()
	db, cleanup := pgutil.SetupTestDB(t)
	t.Cleanup(cleanup)

	if err := mghelper.CreateSchema(ctx, db, &OperatorDao{}); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	return ctx, NewStore(db)
}

func requireDockerAccess(t *testing.T) {
	t.Helper()

	candidates := []string{
		"/var/run/docker.sock",
		filepath.Join(os.Getenv("HOME"), ".docker/run/docker.sock"),
	}

	for _, sock := range candidates {
		if sock == "" {
			continue
		}
		if _, err := os.Stat(sock); err != nil {
			continue
		}
		conn, err := (&net.Dialer{}).DialContext(context.Background(), "unix", sock)
		if err == nil {
			_ = conn.Close()
			return
		}
	}

	t.Skip("docker daemon socket is not accessible; skipping testcontainer-backed operator store tests")
}

func TestStore_UpsertAndGet(t *testing.T) {
	ctx, store := setupStore(t)

	added := time.Now().UTC().Truncate(time.Microsecond)
	op := &operator.Operator{Account: account1, Active: true, AddedAt: added}
	if err := store.Upsert(ctx, op); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	got, err := store.Get(ctx, account1)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if !got.Active || !got.AddedAt.Equal(added) || got.RemovedAt != nil {
		t.Fatalf("unexpected operator: %+v", got)
	}

	// Upsert overwrites on conflict: deactivate.
	removed := added.Add(time.Hour)
	op.Active = false
	op.RemovedAt = &removed
	if err := store.Upsert(ctx, op); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	got, err = store.Get(ctx, account1)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Active || got.RemovedAt == nil || !got.RemovedAt.Equal(removed) {
		t.Fatalf("deactivation not persisted: %+v", got)
	}
}

func TestStore_Get_NotFound(t *testing.T) {
	ctx, store := setupStore(t)

	_, err := store.Get(ctx, account1)
	if !errors.Is(err, operator.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListAndCountActive(t *testing.T) {
	ctx, store := setupStore(t)

	base := time.Now().UTC().Truncate(time.Microsecond)
	if err := store.Upsert(ctx, &operator.Operator{Account: account1, Active: true, AddedAt: base}); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}
	if err := store.Upsert(ctx, &operator.Operator{Account: account2, Active: true, AddedAt: base.Add(time.Minute)}); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	ops, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(ops) != 2 || ops[0].Account != account1 || ops[1].Account != account2 {
		t.Fatalf("unexpected listing: %+v", ops)
	}

	count, err := store.CountActive(ctx)
	if err != nil {
		t.Fatalf("CountActive() failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 active, got %d", count)
	}

	removed := base.Add(time.Hour)
	if err := store.Upsert(ctx, &operator.Operator{Account: account2, Active: false, AddedAt: base.Add(time.Minute), RemovedAt: &removed}); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	count, err = store.CountActive(ctx)
	if err != nil {
		t.Fatalf("CountActive() failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 active after removal, got %d", count)
	}
}
