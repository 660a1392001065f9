package store

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// mistakeRepo implements MistakeRepo on SQLite.
type mistakeRepo struct {
	db *sql.DB
}

var mistakeColumns = []string{
	"id", "student_id", "question_id", "topic_id", "subject", "grade_level",
	"student_answer", "correct_answer", "difficulty", "misconception_id", "created_at",
}

func (r *mistakeRepo) AppendMistake(ctx context.Context, m MistakeRecord) error {
	var misconception any
	if m.MisconceptionID != "" {
		misconception = m.MisconceptionID
	}
	q := builder.Insert(tableMistakes).
		Columns(mistakeColumns...).
		Values(m.ID, m.StudentID, m.QuestionID, m.TopicID, m.Subject, m.GradeLevel,
			m.StudentAnswer, m.CorrectAnswer, m.Difficulty, misconception, utc(m.Timestamp))
	if _, err := execBuilder(ctx, r.db, q); err != nil {
		return fmt.Errorf("save mistake: %w", err)
	}
	return nil
}

func (r *mistakeRepo) ListMistakes(ctx context.Context, studentID, subject string) ([]MistakeRecord, error) {
	pred := entsql.EQ("student_id", studentID)
	if subject != "" {
		pred = entsql.And(pred, entsql.EQ("subject", subject))
	}
	q := builder.Select(mistakeColumns...).
		From(builder.Table(tableMistakes)).
		Where(pred).
		OrderBy(entsql.Asc("created_at"), entsql.Asc("id"))

	var out []MistakeRecord
	err := queryRows(ctx, r.db, q, func(rows *sql.Rows) error {
		var m MistakeRecord
		var misconception sql.NullString
		if err := rows.Scan(&m.ID, &m.StudentID, &m.QuestionID, &m.TopicID, &m.Subject, &m.GradeLevel,
			&m.StudentAnswer, &m.CorrectAnswer, &m.Difficulty, &misconception, &m.Timestamp); err != nil {
			return err
		}
		m.MisconceptionID = misconception.String
		out = append(out, m)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query mistakes: %w", err)
	}
	return out, nil
}

func (r *mistakeRepo) SetMisconception(ctx context.Context, mistakeID, misconceptionID string) error {
	q := builder.Update(tableMistakes).
		Set("misconception_id", misconceptionID).
		Where(entsql.EQ("id", mistakeID))
	res, err := execBuilder(ctx, r.db, q)
	if err != nil {
		return fmt.Errorf("update mistake: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("mistake %q: %w", mistakeID, ErrNotFound)
	}
	return nil
}
