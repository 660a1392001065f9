package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo stamps every appended event with the next shared sequence number.
type eventRepo struct {
	db  *sql.DB
	seq *sequence
}

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	q := builder.Insert(tableSessionEvents).
		Columns("sequence", "timestamp", "session_id", "student_id", "kind", "payload").
		Values(seqNum, utc(time.Now()), data.SessionID, data.StudentID, data.Kind, payloadString(data.Payload))
	if _, err := execBuilder(ctx, r.db, q); err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	q := builder.Insert(tableLLMEvents).
		Columns("sequence", "timestamp", "provider", "model", "purpose", "input_tokens", "output_tokens",
			"latency_ms", "success", "error_message", "request_body", "response_body").
		Values(seqNum, utc(time.Now()), data.Provider, data.Model, data.Purpose, data.InputTokens, data.OutputTokens,
			data.LatencyMs, data.Success, data.ErrorMessage, data.RequestBody, data.ResponseBody)
	if _, err := execBuilder(ctx, r.db, q); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendOptimizationRun(ctx context.Context, data OptimizationRunData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	q := builder.Insert(tableOptRuns).
		Columns("sequence", "started_at", "finished_at", "processed", "optimized", "skipped", "failed", "summary").
		Values(seqNum, utc(data.StartedAt), utc(data.FinishedAt), data.Processed, data.Optimized,
			data.Skipped, data.Failed, payloadString(data.Summary))
	if _, err := execBuilder(ctx, r.db, q); err != nil {
		return fmt.Errorf("save optimization run event: %w", err)
	}
	return nil
}

// eventPredicate applies QueryOpts bounds to the sequence and timestamp columns.
func eventPredicate(base *entsql.Predicate, opts QueryOpts) *entsql.Predicate {
	preds := []*entsql.Predicate{}
	if base != nil {
		preds = append(preds, base)
	}
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", utc(opts.From)))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", utc(opts.To)))
	}
	if len(preds) == 0 {
		return nil
	}
	return entsql.And(preds...)
}

func (r *eventRepo) QuerySessionEvents(ctx context.Context, studentID string, opts QueryOpts) ([]SessionEvent, error) {
	q := builder.Select("sequence", "timestamp", "session_id", "student_id", "kind", "payload").
		From(builder.Table(tableSessionEvents)).
		Where(eventPredicate(entsql.EQ("student_id", studentID), opts)).
		OrderBy(entsql.Asc("sequence"))
	if opts.Limit > 0 {
		q.Limit(opts.Limit)
	}
	var out []SessionEvent
	err := queryRows(ctx, r.db, q, func(rows *sql.Rows) error {
		var e SessionEvent
		if err := rows.Scan(&e.Sequence, &e.Timestamp, &e.SessionID, &e.StudentID, &e.Kind, &e.Payload); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	return out, nil
}

func (r *eventRepo) QueryLLMRequests(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error) {
	q := builder.Select("sequence", "timestamp", "provider", "model", "purpose", "input_tokens", "output_tokens",
		"latency_ms", "success", "error_message", "request_body", "response_body").
		From(builder.Table(tableLLMEvents)).
		OrderBy(entsql.Desc("sequence"))
	if p := eventPredicate(nil, opts); p != nil {
		q.Where(p)
	}
	if opts.Limit > 0 {
		q.Limit(opts.Limit)
	}
	var out []LLMRequestEvent
	err := queryRows(ctx, r.db, q, func(rows *sql.Rows) error {
		var e LLMRequestEvent
		if err := rows.Scan(&e.Sequence, &e.Timestamp, &e.Provider, &e.Model, &e.Purpose, &e.InputTokens,
			&e.OutputTokens, &e.LatencyMs, &e.Success, &e.ErrorMessage, &e.RequestBody, &e.ResponseBody); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query LLM request events: %w", err)
	}
	return out, nil
}
