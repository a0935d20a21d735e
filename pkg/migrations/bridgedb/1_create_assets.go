package bridgedb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"github.com/propchain-labs/bridge-coordinator/pkg/assetledger"
	mghelper "github.com/propchain-labs/bridge-coordinator/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating assets table...")
		if err := mghelper.CreateSchema(ctx, db, &assetledger.AssetDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &assetledger.AssetDao{}, "owner", "custody")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping assets table...")
		return mghelper.DropTables(ctx, db, &assetledger.AssetDao{})
	})
}
