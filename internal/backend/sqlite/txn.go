// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/juju/retry"
	"github.com/mattn/go-sqlite3"
)

const (
	txnAttempts   = 10
	txnRetryDelay = 10 * time.Millisecond
	txnMaxDelay   = time.Second
)

// IsErrRetryable returns true if the given error might be transient and the
// transaction can be retried.
func IsErrRetryable(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	if errors.Is(err, sqlite3.ErrBusy) || errors.Is(err, sqlite3.ErrLocked) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "cannot start a transaction within a transaction")
}

// runTxn runs fn in a transaction, retrying while the database is busy.
func (b *Backend) runTxn(ctx context.Context, fn func(context.Context, *sql.Tx) error) error {
	return errors.Trace(b.retry(ctx, func() error {
		return b.txn(ctx, fn)
	}))
}

func (b *Backend) retry(ctx context.Context, fn func() error) error {
	err := retry.Call(retry.CallArgs{
		Func: fn,
		IsFatalError: func(err error) bool {
			return !IsErrRetryable(err)
		},
		NotifyFunc: func(err error, attempt int) {
			b.logger.Debugf("retrying transaction, attempt %d: %v", attempt, err)
		},
		Attempts:    txnAttempts,
		Delay:       txnRetryDelay,
		MaxDelay:    txnMaxDelay,
		BackoffFunc: retry.DoubleDelay,
		Clock:       b.clock,
		Stop:        ctx.Done(),
	})
	return retry.LastError(err)
}

func (b *Backend) txn(ctx context.Context, fn func(context.Context, *sql.Tx) error) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Trace(err)
	}
	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			b.logger.Warningf("rolling back transaction: %v", rbErr)
		}
		return errors.Trace(err)
	}
	return errors.Trace(tx.Commit())
}
