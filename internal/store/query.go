package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// querier is satisfied by every ent SQL builder.
type querier interface {
	Query() (string, []any)
}

func execBuilder(ctx context.Context, db *sql.DB, q querier) (sql.Result, error) {
	query, args := q.Query()
	return db.ExecContext(ctx, query, args...)
}

// queryRows runs q and calls scan for every row. Rows are closed before
// returning so the single pooled connection is free for the caller.
func queryRows(ctx context.Context, db *sql.DB, q querier, scan func(*sql.Rows) error) error {
	query, args := q.Query()
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func utc(t time.Time) time.Time {
	return t.UTC()
}

func marshalStrings(ss []string) (string, error) {
	if ss == nil {
		ss = []string{}
	}
	b, err := json.Marshal(ss)
	return string(b), err
}

func unmarshalStrings(b []byte) ([]string, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var ss []string
	if err := json.Unmarshal(b, &ss); err != nil {
		return nil, err
	}
	return ss, nil
}

func payloadString(b []byte) string {
	if len(b) == 0 {
		return "null"
	}
	return string(b)
}
