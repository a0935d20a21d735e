package operatorstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/propchain-labs/bridge-coordinator/pkg/operator"
)

// OperatorDao is a data access object that maps directly to the
// 'bridge_operators' table in PostgreSQL.
type OperatorDao struct {
	bun.BaseModel `bun:"table:bridge_operators,alias:op"`
	Account       string     `bun:"account,pk,type:varchar(42)"`
	Active        bool       `bun:"active,notnull"`
	AddedAt       time.Time  `bun:"added_at,notnull"`
	RemovedAt     *time.Time `bun:"removed_at"`
}

func toOperatorDao(op *operator.Operator) *OperatorDao {
	return &OperatorDao{
		Account:   op.Account,
		Active:    op.Active,
		AddedAt:   op.AddedAt,
		RemovedAt: op.RemovedAt,
	}
}

func toOperator(dao *OperatorDao) *operator.Operator {
	return &operator.Operator{
		Account:   dao.Account,
		Active:    dao.Active,
		AddedAt:   dao.AddedAt,
		RemovedAt: dao.RemovedAt,
	}
}
