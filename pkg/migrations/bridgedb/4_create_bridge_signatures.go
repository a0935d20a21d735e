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
		log.Println("creating bridge_signatures table...")
		// The (request_id, operator) unique constraint comes from the model
		// schema; it enforces one signature per operator per request.
		if err := mghelper.CreateSchema(ctx, db, &bridgestore.SignatureDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &bridgestore.SignatureDao{}, "request_id")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping bridge_signatures table...")
		return mghelper.DropTables(ctx, db, &bridgestore.SignatureDao{})
	})
}
