package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// studentRepo implements StudentRepo on SQLite.
type studentRepo struct {
	db *sql.DB
}

var studentColumns = []string{"id", "grade_level", "mastered_topics", "current_topic", "current_difficulty", "updated_at"}

func (r *studentRepo) GetStudent(ctx context.Context, id string) (*StudentRecord, error) {
	q := builder.Select(studentColumns...).
		From(builder.Table(tableStudents)).
		Where(entsql.EQ("id", id))

	var out *StudentRecord
	err := queryRows(ctx, r.db, q, func(rows *sql.Rows) error {
		var s StudentRecord
		var mastered []byte
		if err := rows.Scan(&s.ID, &s.GradeLevel, &mastered, &s.CurrentTopic, &s.CurrentDifficulty, &s.UpdatedAt); err != nil {
			return err
		}
		topics, err := unmarshalStrings(mastered)
		if err != nil {
			return fmt.Errorf("decode mastered topics: %w", err)
		}
		s.MasteredTopics = topics
		out = &s
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query student: %w", err)
	}
	if out == nil {
		return nil, fmt.Errorf("student %q: %w", id, ErrNotFound)
	}
	return out, nil
}

func (r *studentRepo) SaveStudent(ctx context.Context, s StudentRecord) error {
	if s.ID == "" {
		return errors.New("save student: empty id")
	}
	mastered, err := marshalStrings(s.MasteredTopics)
	if err != nil {
		return fmt.Errorf("encode mastered topics: %w", err)
	}
	q := builder.Insert(tableStudents).
		Columns(studentColumns...).
		Values(s.ID, s.GradeLevel, mastered, s.CurrentTopic, s.CurrentDifficulty, utc(s.UpdatedAt)).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues())
	if _, err := execBuilder(ctx, r.db, q); err != nil {
		return fmt.Errorf("save student: %w", err)
	}
	return nil
}
