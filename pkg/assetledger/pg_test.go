package assetledger

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/propchain-labs/bridge-coordinator/pkg/asset"
	"github.com/propchain-labs/bridge-coordinator/pkg/pgutil"
	mghelper "github.com/propchain-labs/bridge-coordinator/pkg/pgutil/migrations"
)

func setupLedger(t *testing.T) (context.Context, *pgLedger) {
	t.Helper()
	requireDockerAccess(t)

	ctx := context.Background()
	db, cleanup := pgutil.SetupTestDB(t)
	t.Cleanup(cleanup)

	if err := mghelper.CreateSchema(ctx, db, &AssetDao{}, &BridgedAssetDao{}); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	return ctx, NewLedger(db)
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

	t.Skip("docker daemon socket is not accessible; skipping testcontainer-backed ledger tests")
}

const (
	ownerA = "0xaaaa00000000000000000000000000000000aaaa"
	ownerB = "0xbbbb00000000000000000000000000000000bbbb"
)

func sampleMetadata() asset.Metadata {
	return asset.Metadata{
		Location:         "12 Harbor Street",
		SizeSqft:         2400,
		LegalDescription: "Lot 7, Block 3",
		Valuation:        decimal.NewFromInt(750000),
		DocumentsURL:     "https://docs.example/deeds/7",
	}
}

func TestLedger_RegisterAndGet(t *testing.T) {
	ctx, ledger := setupLedger(t)

	id, err := ledger.Register(ctx, ownerA, sampleMetadata())
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	got, err := ledger.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Owner != ownerA || got.Custody != asset.CustodyUnlocked {
		t.Fatalf("unexpected asset: %+v", got)
	}
	if got.Metadata.Location != "12 Harbor Street" {
		t.Fatalf("metadata not round-tripped: %+v", got.Metadata)
	}
	if !got.Metadata.Valuation.Equal(decimal.NewFromInt(750000)) {
		t.Fatalf("valuation mismatch: %s", got.Metadata.Valuation)
	}

	_, err = ledger.Get(ctx, 9999)
	if !errors.Is(err, asset.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLedger_LockUnlock(t *testing.T) {
	ctx, ledger := setupLedger(t)

	id, err := ledger.Register(ctx, ownerA, sampleMetadata())
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	// Lock by the wrong owner must not apply.
	if err := LockCustody(ctx, ledger.db, id, ownerB); !errors.Is(err, asset.ErrCustodyConflict) {
		t.Fatalf("expected ErrCustodyConflict, got %v", err)
	}

	if err := LockCustody(ctx, ledger.db, id, ownerA); err != nil {
		t.Fatalf("LockCustody() failed: %v", err)
	}

	// A second lock sees custody=locked and conflicts.
	if err := LockCustody(ctx, ledger.db, id, ownerA); !errors.Is(err, asset.ErrCustodyConflict) {
		t.Fatalf("expected ErrCustodyConflict on double lock, got %v", err)
	}

	if err := ledger.Unlock(ctx, id, ownerA); err != nil {
		t.Fatalf("Unlock() failed: %v", err)
	}

	got, err := ledger.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Custody != asset.CustodyUnlocked {
		t.Fatalf("expected unlocked, got %s", got.Custody)
	}
}

func TestLedger_Forward(t *testing.T) {
	ctx, ledger := setupLedger(t)

	id, err := ledger.Register(ctx, ownerA, sampleMetadata())
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	// Forwarding an unlocked asset conflicts; only locked assets move.
	if err := ledger.Forward(ctx, id); !errors.Is(err, asset.ErrCustodyConflict) {
		t.Fatalf("expected ErrCustodyConflict, got %v", err)
	}

	if err := LockCustody(ctx, ledger.db, id, ownerA); err != nil {
		t.Fatalf("LockCustody() failed: %v", err)
	}
	if err := ledger.Forward(ctx, id); err != nil {
		t.Fatalf("Forward() failed: %v", err)
	}

	got, err := ledger.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Custody != asset.CustodyBridged {
		t.Fatalf("expected bridged, got %s", got.Custody)
	}

	// Bridged assets cannot be unlocked back.
	if err := ledger.Unlock(ctx, id, ownerA); !errors.Is(err, asset.ErrCustodyConflict) {
		t.Fatalf("expected ErrCustodyConflict, got %v", err)
	}
}

func TestLedger_MintEquivalent(t *testing.T) {
	ctx, ledger := setupLedger(t)

	id1, err := ledger.MintEquivalent(ctx, 101, sampleMetadata(), ownerB, "ethereum")
	if err != nil {
		t.Fatalf("MintEquivalent() failed: %v", err)
	}
	id2, err := ledger.MintEquivalent(ctx, 102, sampleMetadata(), ownerB, "polygon")
	if err != nil {
		t.Fatalf("MintEquivalent() failed: %v", err)
	}
	if id1 == 0 || id2 == 0 || id1 == id2 {
		t.Fatalf("expected distinct non-zero mint IDs, got %d and %d", id1, id2)
	}
}

func TestLedger_MintEquivalent_IdempotentPerRequest(t *testing.T) {
	ctx, ledger := setupLedger(t)

	id1, err := ledger.MintEquivalent(ctx, 101, sampleMetadata(), ownerB, "ethereum")
	if err != nil {
		t.Fatalf("MintEquivalent() failed: %v", err)
	}

	// A repeat mint for the same request returns the committed asset.
	id2, err := ledger.MintEquivalent(ctx, 101, sampleMetadata(), ownerB, "ethereum")
	if err != nil {
		t.Fatalf("repeat MintEquivalent() failed: %v", err)
	}
	if id2 != id1 {
		t.Fatalf("expected the same destination asset %d, got %d", id1, id2)
	}

	count, err := ledger.db.NewSelect().
		Model((*BridgedAssetDao)(nil)).
		Where("request_id = ?", 101).
		Count(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one minted row for the request, got %d", count)
	}
}

func TestLedger_BurnEquivalent(t *testing.T) {
	ctx, ledger := setupLedger(t)

	id, err := ledger.MintEquivalent(ctx, 101, sampleMetadata(), ownerB, "ethereum")
	if err != nil {
		t.Fatalf("MintEquivalent() failed: %v", err)
	}

	if err := ledger.BurnEquivalent(ctx, id, ownerA); !errors.Is(err, asset.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for wrong holder, got %v", err)
	}
	if err := ledger.BurnEquivalent(ctx, id, ownerB); err != nil {
		t.Fatalf("BurnEquivalent() failed: %v", err)
	}
	if err := ledger.BurnEquivalent(ctx, id, ownerB); !errors.Is(err, asset.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after burn, got %v", err)
	}
}

func TestLedger_OwnerOf(t *testing.T) {
	ctx, ledger := setupLedger(t)

	id, err := ledger.Register(ctx, ownerA, sampleMetadata())
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	owner, err := ledger.OwnerOf(ctx, id)
	if err != nil {
		t.Fatalf("OwnerOf() failed: %v", err)
	}
	if owner != ownerA {
		t.Fatalf("expected owner %s, got %s", ownerA, owner)
	}

	if _, err := ledger.OwnerOf(ctx, id+1000); !errors.Is(err, asset.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
