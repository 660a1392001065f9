package store

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// trackerRepo implements TrackerRepo on SQLite.
type trackerRepo struct {
	db *sql.DB
}

func (r *trackerRepo) LoadTracker(ctx context.Context, studentID string) (*TrackerSnapshot, error) {
	q := builder.Select("student_id", "payload", "updated_at").
		From(builder.Table(tableTrackers)).
		Where(entsql.EQ("student_id", studentID))
	var out *TrackerSnapshot
	err := queryRows(ctx, r.db, q, func(rows *sql.Rows) error {
		var s TrackerSnapshot
		if err := rows.Scan(&s.StudentID, &s.Payload, &s.UpdatedAt); err != nil {
			return err
		}
		out = &s
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query tracker snapshot: %w", err)
	}
	if out == nil {
		return nil, ErrNotFound
	}
	return out, nil
}

func (r *trackerRepo) SaveTracker(ctx context.Context, s TrackerSnapshot) error {
	q := builder.Insert(tableTrackers).
		Columns("student_id", "payload", "updated_at").
		Values(s.StudentID, payloadString(s.Payload), utc(s.UpdatedAt)).
		OnConflict(entsql.ConflictColumns("student_id"), entsql.ResolveWithNewValues())
	if _, err := execBuilder(ctx, r.db, q); err != nil {
		return fmt.Errorf("save tracker snapshot: %w", err)
	}
	return nil
}
