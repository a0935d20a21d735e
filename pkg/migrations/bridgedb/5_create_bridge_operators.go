package bridgedb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"github.com/propchain-labs/bridge-coordinator/pkg/operatorstore"
	mghelper "github.com/propchain-labs/bridge-coordinator/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating bridge_operators table...")
		if err := mghelper.CreateSchema(ctx, db, &operatorstore.OperatorDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &operatorstore.OperatorDao{}, "active")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping bridge_operators table...")
		return mghelper.DropTables(ctx, db, &operatorstore.OperatorDao{})
	})
}
