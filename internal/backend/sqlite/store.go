// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/juju/errors"

	"github.com/kananoja/nemo-qml-plugin-contacts/core/contact"
)

const contactColumns = `id, first_name, middle_name, last_name, custom_label,
    nickname, avatar, organization, favorite, presence, sync_target`

// Detail kinds stored in contact_detail.
const (
	phoneDetail   = "phone"
	emailDetail   = "email"
	accountDetail = "account"
)

// query is the WHERE and ORDER BY part of a contact selection.
type query struct {
	where string
	args  []any
	order string
}

// buildQuery translates a filter and sorting into SQL. Without a sync
// target or id restriction only aggregate contacts match.
func buildQuery(filter contact.Filter, sorting []contact.SortOrder) (query, error) {
	var (
		conds []string
		q     query
	)
	if filter.Favorite {
		conds = append(conds, "favorite = 1")
	}
	if filter.Presence != contact.PresenceUnknown {
		conds = append(conds, "presence = ?")
		q.args = append(q.args, int(filter.Presence))
	}
	switch {
	case filter.SyncTarget != "":
		conds = append(conds, "sync_target = ?")
		q.args = append(q.args, filter.SyncTarget)
	case filter.Ids == nil:
		conds = append(conds, "sync_target = ?")
		q.args = append(q.args, contact.AggregateSyncTarget)
	}
	if filter.Ids != nil {
		ids, err := rowIds(filter.Ids)
		if err != nil {
			return query{}, errors.Trace(err)
		}
		cond, args := inClause("id", ids)
		conds = append(conds, cond)
		q.args = append(q.args, args...)
	}
	if len(conds) > 0 {
		q.where = " WHERE " + strings.Join(conds, " AND ")
	}

	// Blank values sort first, as contact.Compare orders them. NOCASE only
	// folds ASCII.
	var order []string
	for _, s := range sorting {
		var column string
		switch s.Field {
		case contact.FieldFirstName:
			column = "first_name"
		case contact.FieldLastName:
			column = "last_name"
		default:
			return query{}, errors.NotValidf("sort field %d", int(s.Field))
		}
		order = append(order, column+" <> ''", column+" COLLATE NOCASE")
	}
	order = append(order, "id")
	q.order = " ORDER BY " + strings.Join(order, ", ")
	return q, nil
}

func inClause(column string, ids []int64) (string, []any) {
	if len(ids) == 0 {
		return "0", nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return fmt.Sprintf("%s IN (%s)", column, strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")), args
}

func selectIds(ctx context.Context, tx *sql.Tx, q query) ([]contact.Id, error) {
	rows, err := tx.QueryContext(ctx, "SELECT id FROM contact"+q.where+q.order, q.args...)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer func() { _ = rows.Close() }()

	var ids []contact.Id
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Trace(err)
		}
		ids = append(ids, managerId(id))
	}
	return ids, errors.Trace(rows.Err())
}

// selectContacts loads the matching contacts with their details. All rows
// are read before the details are queried.
func selectContacts(ctx context.Context, tx *sql.Tx, q query) ([]contact.Contact, error) {
	rows, err := tx.QueryContext(ctx, "SELECT "+contactColumns+" FROM contact"+q.where+q.order, q.args...)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var (
		contacts []contact.Contact
		index    = make(map[int64]int)
	)
	for rows.Next() {
		var (
			id       int64
			ct       contact.Contact
			presence int
		)
		err := rows.Scan(&id, &ct.Name.First, &ct.Name.Middle, &ct.Name.Last, &ct.Name.CustomLabel,
			&ct.Nickname, &ct.Avatar, &ct.Organization, &ct.Favorite, &presence, &ct.SyncTarget)
		if err != nil {
			_ = rows.Close()
			return nil, errors.Trace(err)
		}
		ct.Id = managerId(id)
		ct.Presence = contact.Presence(presence)
		index[id] = len(contacts)
		contacts = append(contacts, ct)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, errors.Trace(err)
	}
	if err := rows.Close(); err != nil {
		return nil, errors.Trace(err)
	}
	if len(contacts) == 0 {
		return nil, nil
	}

	rows, err = tx.QueryContext(ctx, `
SELECT contact_id, kind, value FROM contact_detail
WHERE contact_id IN (SELECT id FROM contact`+q.where+`)
ORDER BY contact_id, kind, position`, q.args...)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var (
			id          int64
			kind, value string
		)
		if err := rows.Scan(&id, &kind, &value); err != nil {
			return nil, errors.Trace(err)
		}
		i, ok := index[id]
		if !ok {
			continue
		}
		ct := &contacts[i]
		switch kind {
		case phoneDetail:
			ct.PhoneNumbers = append(ct.PhoneNumbers, value)
		case emailDetail:
			ct.EmailAddresses = append(ct.EmailAddresses, value)
		case accountDetail:
			ct.OnlineAccounts = append(ct.OnlineAccounts, value)
		}
	}
	return contacts, errors.Trace(rows.Err())
}

// selectContactsById returns the contacts in the order of ids, skipping
// unknown ones.
func selectContactsById(ctx context.Context, tx *sql.Tx, ids []int64) ([]contact.Contact, error) {
	cond, args := inClause("id", ids)
	found, err := selectContacts(ctx, tx, query{where: " WHERE " + cond, args: args})
	if err != nil {
		return nil, errors.Trace(err)
	}
	byKey := make(map[contact.Key]contact.Contact, len(found))
	for _, ct := range found {
		byKey[ct.Id.Key()] = ct
	}
	var contacts []contact.Contact
	for _, id := range ids {
		if ct, ok := byKey[contact.Key(id)]; ok {
			contacts = append(contacts, ct)
		}
	}
	return contacts, nil
}

func insertContact(ctx context.Context, tx *sql.Tx, ct contact.Contact) (int64, error) {
	res, err := tx.ExecContext(ctx, `
INSERT INTO contact (first_name, middle_name, last_name, custom_label,
    nickname, avatar, organization, favorite, presence, sync_target)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ct.Name.First, ct.Name.Middle, ct.Name.Last, ct.Name.CustomLabel,
		ct.Nickname, ct.Avatar, ct.Organization, ct.Favorite, int(ct.Presence), ct.SyncTarget)
	if err != nil {
		return 0, errors.Trace(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Trace(err)
	}
	return id, errors.Trace(insertDetails(ctx, tx, id, ct))
}

func updateContact(ctx context.Context, tx *sql.Tx, ct contact.Contact) error {
	id := int64(ct.Id.Key())
	res, err := tx.ExecContext(ctx, `
UPDATE contact SET first_name = ?, middle_name = ?, last_name = ?, custom_label = ?,
    nickname = ?, avatar = ?, organization = ?, favorite = ?, presence = ?, sync_target = ?
WHERE id = ?`,
		ct.Name.First, ct.Name.Middle, ct.Name.Last, ct.Name.CustomLabel,
		ct.Nickname, ct.Avatar, ct.Organization, ct.Favorite, int(ct.Presence), ct.SyncTarget, id)
	if err != nil {
		return errors.Trace(err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Trace(err)
	} else if n == 0 {
		return errors.NotFoundf("contact %s", ct.Id)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM contact_detail WHERE contact_id = ?", id); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(insertDetails(ctx, tx, id, ct))
}

func insertDetails(ctx context.Context, tx *sql.Tx, id int64, ct contact.Contact) error {
	for _, d := range []struct {
		kind   string
		values []string
	}{
		{phoneDetail, ct.PhoneNumbers},
		{emailDetail, ct.EmailAddresses},
		{accountDetail, ct.OnlineAccounts},
	} {
		for i, value := range d.values {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO contact_detail (contact_id, kind, position, value) VALUES (?, ?, ?, ?)",
				id, d.kind, i, value)
			if err != nil {
				return errors.Trace(err)
			}
		}
	}
	return nil
}

// deleteContacts removes the contacts and returns the ids that existed.
func deleteContacts(ctx context.Context, tx *sql.Tx, ids []int64) ([]contact.Id, error) {
	var removed []contact.Id
	for _, id := range ids {
		res, err := tx.ExecContext(ctx, "DELETE FROM contact WHERE id = ?", id)
		if err != nil {
			return nil, errors.Trace(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, errors.Trace(err)
		}
		if n > 0 {
			removed = append(removed, managerId(id))
		}
	}
	return removed, nil
}

// selectRelationships returns the relationships anchored at first. An empty
// kind matches every type.
func selectRelationships(ctx context.Context, tx *sql.Tx, first int64, kind string) ([]contact.Relationship, error) {
	rows, err := tx.QueryContext(ctx, `
SELECT second_id, type FROM relationship
WHERE first_id = ? AND (? = '' OR type = ?)
ORDER BY second_id, type`, first, kind, kind)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer func() { _ = rows.Close() }()

	var rels []contact.Relationship
	for rows.Next() {
		var (
			second int64
			typ    string
		)
		if err := rows.Scan(&second, &typ); err != nil {
			return nil, errors.Trace(err)
		}
		rels = append(rels, contact.Relationship{
			First:  managerId(first),
			Second: managerId(second),
			Type:   typ,
		})
	}
	return rels, errors.Trace(rows.Err())
}

func insertRelationships(ctx context.Context, tx *sql.Tx, rels []contact.Relationship) error {
	for _, rel := range rels {
		_, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO relationship (first_id, second_id, type) VALUES (?, ?, ?)",
			int64(rel.First.Key()), int64(rel.Second.Key()), rel.Type)
		if err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}
