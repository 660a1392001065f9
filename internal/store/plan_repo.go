package store

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// planRepo implements PlanRepo on SQLite.
type planRepo struct {
	db *sql.DB
}

var planColumns = []string{"id", "student_id", "subject", "priority", "status", "payload", "created_at", "updated_at"}

func (r *planRepo) SavePlan(ctx context.Context, p PlanRecord) error {
	q := builder.Insert(tablePlans).
		Columns(planColumns...).
		Values(p.ID, p.StudentID, p.Subject, p.Priority, p.Status, payloadString(p.Payload), utc(p.CreatedAt), utc(p.UpdatedAt)).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues())
	if _, err := execBuilder(ctx, r.db, q); err != nil {
		return fmt.Errorf("save remediation plan: %w", err)
	}
	return nil
}

func (r *planRepo) first(ctx context.Context, pred *entsql.Predicate) (*PlanRecord, error) {
	q := builder.Select(planColumns...).
		From(builder.Table(tablePlans)).
		Where(pred).
		OrderBy(entsql.Desc("created_at")).
		Limit(1)
	var out *PlanRecord
	err := queryRows(ctx, r.db, q, func(rows *sql.Rows) error {
		var p PlanRecord
		if err := rows.Scan(&p.ID, &p.StudentID, &p.Subject, &p.Priority, &p.Status, &p.Payload, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return err
		}
		out = &p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query remediation plan: %w", err)
	}
	if out == nil {
		return nil, ErrNotFound
	}
	return out, nil
}

func (r *planRepo) GetPlan(ctx context.Context, id string) (*PlanRecord, error) {
	return r.first(ctx, entsql.EQ("id", id))
}

func (r *planRepo) ActivePlan(ctx context.Context, studentID, subject string) (*PlanRecord, error) {
	return r.first(ctx, entsql.And(
		entsql.EQ("student_id", studentID),
		entsql.EQ("subject", subject),
		entsql.EQ("status", PlanActive),
	))
}
