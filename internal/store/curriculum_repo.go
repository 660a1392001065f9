package store

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	entsql "entgo.io/ent/dialect/sql"
	"golang.org/x/mod/semver"
)

// curriculumRepo implements CurriculumRepo on SQLite.
type curriculumRepo struct {
	db *sql.DB
}

var curriculumColumns = []string{"id", "grade_level", "subject", "version", "reason", "previous_id", "payload", "created_at"}

func scanCurriculum(rows *sql.Rows) (CurriculumRecord, error) {
	var c CurriculumRecord
	err := rows.Scan(&c.ID, &c.GradeLevel, &c.Subject, &c.Version, &c.Reason, &c.PreviousID, &c.Payload, &c.CreatedAt)
	return c, err
}

func (r *curriculumRepo) SaveCurriculum(ctx context.Context, c CurriculumRecord) error {
	q := builder.Insert(tableCurricula).
		Columns(curriculumColumns...).
		Values(c.ID, c.GradeLevel, c.Subject, c.Version, c.Reason, c.PreviousID, payloadString(c.Payload), utc(c.CreatedAt))
	if _, err := execBuilder(ctx, r.db, q); err != nil {
		return fmt.Errorf("save curriculum version: %w", err)
	}
	return nil
}

func (r *curriculumRepo) list(ctx context.Context, pred *entsql.Predicate) ([]CurriculumRecord, error) {
	q := builder.Select(curriculumColumns...).
		From(builder.Table(tableCurricula)).
		Where(pred)
	var out []CurriculumRecord
	err := queryRows(ctx, r.db, q, func(rows *sql.Rows) error {
		c, err := scanCurriculum(rows)
		if err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query curricula: %w", err)
	}
	return out, nil
}

func (r *curriculumRepo) GetCurriculum(ctx context.Context, id string) (*CurriculumRecord, error) {
	recs, err := r.list(ctx, entsql.EQ("id", id))
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("curriculum %q: %w", id, ErrNotFound)
	}
	return &recs[0], nil
}

func (r *curriculumRepo) ListCurriculumVersions(ctx context.Context, gradeLevel int, subject string) ([]CurriculumRecord, error) {
	recs, err := r.list(ctx, entsql.And(
		entsql.EQ("grade_level", gradeLevel),
		entsql.EQ("subject", subject),
	))
	if err != nil {
		return nil, err
	}
	sortNewestFirst(recs)
	return recs, nil
}

func (r *curriculumRepo) LatestCurriculum(ctx context.Context, gradeLevel int, subject string) (*CurriculumRecord, error) {
	recs, err := r.ListCurriculumVersions(ctx, gradeLevel, subject)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("curriculum grade %d %s: %w", gradeLevel, subject, ErrNotFound)
	}
	return &recs[0], nil
}

func (r *curriculumRepo) ListCurriculumKeys(ctx context.Context) ([]CurriculumKey, error) {
	q := builder.Select("grade_level", "subject").
		From(builder.Table(tableCurricula)).
		Distinct().
		OrderBy(entsql.Asc("grade_level"), entsql.Asc("subject"))
	var out []CurriculumKey
	err := queryRows(ctx, r.db, q, func(rows *sql.Rows) error {
		var k CurriculumKey
		if err := rows.Scan(&k.GradeLevel, &k.Subject); err != nil {
			return err
		}
		out = append(out, k)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query curriculum keys: %w", err)
	}
	return out, nil
}

// sortNewestFirst orders records by version descending, then creation time.
func sortNewestFirst(recs []CurriculumRecord) {
	slices.SortStableFunc(recs, func(a, b CurriculumRecord) int {
		if c := semver.Compare(semverOf(b.Version), semverOf(a.Version)); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

func semverOf(v string) string {
	return "v" + strings.TrimPrefix(v, "v")
}

func compareKeys(a, b CurriculumKey) int {
	if c := cmp.Compare(a.GradeLevel, b.GradeLevel); c != 0 {
		return c
	}
	return cmp.Compare(a.Subject, b.Subject)
}
