package composables

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/workstream-hr/workstream/pkg/constants"
)

// InTenantTx runs fn inside a transaction scoped to the tenant in ctx. If a
// transaction is already present in the context it is reused, so nested
// service calls share one atomic scope.
func InTenantTx(ctx context.Context, fn func(context.Context) error) error {
	if _, err := UseTenantID(ctx); err != nil {
		return err
	}

	if existing, ok := ctx.Value(constants.TxKey).(pgx.Tx); ok && existing != nil {
		return fn(ctx)
	}

	pool, err := UsePool(ctx)
	if err != nil {
		return err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}

	txCtx := WithTx(ctx, tx)
	if err := fn(txCtx); err != nil {
		if rErr := tx.Rollback(ctx); rErr != nil {
			return errors.Join(err, rErr)
		}
		return err
	}
	return tx.Commit(ctx)
}

func InTenantTxResult[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := InTenantTx(ctx, func(txCtx context.Context) error {
		var innerErr error
		out, innerErr = fn(txCtx)
		return innerErr
	})
	return out, err
}
