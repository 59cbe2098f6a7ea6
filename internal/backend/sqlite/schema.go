// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package sqlite

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/juju/errors"
)

// localSyncTarget is the sync target of the self contact.
const localSyncTarget = "local"

const selfContactSetting = "self-contact-id"

var schema = []string{`
CREATE TABLE IF NOT EXISTS contact (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    first_name   TEXT NOT NULL DEFAULT '',
    middle_name  TEXT NOT NULL DEFAULT '',
    last_name    TEXT NOT NULL DEFAULT '',
    custom_label TEXT NOT NULL DEFAULT '',
    nickname     TEXT NOT NULL DEFAULT '',
    avatar       TEXT NOT NULL DEFAULT '',
    organization TEXT NOT NULL DEFAULT '',
    favorite     INTEGER NOT NULL DEFAULT 0,
    presence     INTEGER NOT NULL DEFAULT 0,
    sync_target  TEXT NOT NULL DEFAULT 'aggregate'
);`, `
CREATE TABLE IF NOT EXISTS contact_detail (
    contact_id INTEGER NOT NULL REFERENCES contact (id) ON DELETE CASCADE,
    kind       TEXT NOT NULL,
    position   INTEGER NOT NULL,
    value      TEXT NOT NULL,
    PRIMARY KEY (contact_id, kind, position)
);`, `
CREATE TABLE IF NOT EXISTS relationship (
    first_id  INTEGER NOT NULL REFERENCES contact (id) ON DELETE CASCADE,
    second_id INTEGER NOT NULL REFERENCES contact (id) ON DELETE CASCADE,
    type      TEXT NOT NULL,
    PRIMARY KEY (first_id, second_id, type)
);`, `
CREATE TABLE IF NOT EXISTS setting (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);`,
}

func createSchema(ctx context.Context, tx *sql.Tx) error {
	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// ensureSelfContact returns the row id of the self contact, creating it if
// needed.
func ensureSelfContact(ctx context.Context, tx *sql.Tx) (int64, error) {
	var value string
	err := tx.QueryRowContext(ctx, "SELECT value FROM setting WHERE key = ?", selfContactSetting).Scan(&value)
	switch {
	case err == nil:
		id, err := strconv.ParseInt(value, 10, 64)
		return id, errors.Annotatef(err, "parsing %s", selfContactSetting)
	case !errors.Is(err, sql.ErrNoRows):
		return 0, errors.Trace(err)
	}

	res, err := tx.ExecContext(ctx, "INSERT INTO contact (sync_target) VALUES (?)", localSyncTarget)
	if err != nil {
		return 0, errors.Trace(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Trace(err)
	}
	_, err = tx.ExecContext(ctx, "INSERT INTO setting (key, value) VALUES (?, ?)",
		selfContactSetting, strconv.FormatInt(id, 10))
	return id, errors.Trace(err)
}
