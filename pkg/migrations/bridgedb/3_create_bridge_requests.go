package bridgedb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"github.com/propchain-labs/bridge-coordinator/pkg/bridgestore"
	mghelper "github.com/propchain-labs/bridge-coordinator/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating bridge_requests table...")
		if err := mghelper.CreateSchema(ctx, db, &bridgestore.RequestDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &bridgestore.RequestDao{}, "asset_id", "source_owner", "status")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping bridge_requests table...")
		return mghelper.DropTables(ctx, db, &bridgestore.RequestDao{})
	})
}
