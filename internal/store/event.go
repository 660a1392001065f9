package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	entsql "entgo.io/ent/dialect/sql"
)

// sequence hands out the ordering number shared by every event table, so
// session events, generative requests and optimization runs interleave in
// one total order. The counter is a single row in tableSequence.
type sequence struct {
	mu sync.Mutex
	db *sql.DB
}

func newSequence(ctx context.Context, db *sql.DB) (*sequence, error) {
	seed := builder.Insert(tableSequence).
		Columns("id", "next_val").
		Values(1, 1).
		OnConflict(entsql.DoNothing())
	if _, err := execBuilder(ctx, db, seed); err != nil {
		return nil, fmt.Errorf("seed event sequence: %w", err)
	}
	return &sequence{db: db}, nil
}

// Next reserves and returns the next number.
func (s *sequence) Next(ctx context.Context) (n int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query, args := builder.Select("next_val").
		From(builder.Table(tableSequence)).
		Where(entsql.EQ("id", 1)).
		Query()
	if err = tx.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("read event sequence: %w", err)
	}
	query, args = builder.Update(tableSequence).
		Add("next_val", 1).
		Where(entsql.EQ("id", 1)).
		Query()
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("advance event sequence: %w", err)
	}
	return n, tx.Commit()
}
