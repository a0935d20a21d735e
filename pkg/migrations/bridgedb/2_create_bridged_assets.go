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
		log.Println("creating bridged_assets table...")
		if err := mghelper.CreateSchema(ctx, db, &assetledger.BridgedAssetDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &assetledger.BridgedAssetDao{}, "recipient", "destination_chain")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping bridged_assets table...")
		return mghelper.DropTables(ctx, db, &assetledger.BridgedAssetDao{})
	})
}
