package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/asadullah4bls/evalai/internal/quiz"
)

const attemptEventsTable = "attempt_events"

var attemptEventColumns = []string{
	"id", "sequence", "timestamp", "attempt_id", "content_key",
	"sources", "mcq_score", "mcq_total", "saq_pending",
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// rangePredicates translates the shared sequence and time filters.
func rangePredicates(opts QueryOpts) []*entsql.Predicate {
	var preds []*entsql.Predicate
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", opts.To.UnixMilli()))
	}
	return preds
}

func (r *eventRepo) AppendAttempt(ctx context.Context, data AttemptEventData) error {
	return appendEvent(ctx, r.db, func(tx *sql.Tx, seq int64) error {
		query, args := builder().Insert(attemptEventsTable).
			Columns(attemptEventColumns[1:]...).
			Values(
				seq,
				r.clock().UnixMilli(),
				data.AttemptID,
				data.ContentKey,
				strings.Join(data.Sources, "|"),
				data.MCQScore,
				data.MCQTotal,
				data.SAQPending,
			).Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("save attempt event: %w", err)
		}
		return nil
	})
}

func (r *eventRepo) QueryAttempts(ctx context.Context, opts QueryOpts) ([]AttemptEvent, error) {
	sel := builder().Select(attemptEventColumns...).From(entsql.Table(attemptEventsTable))
	if preds := rangePredicates(opts); len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderBy(entsql.Desc("sequence"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var events []AttemptEvent
	for rows.Next() {
		var e AttemptEvent
		var ts int64
		var sources string
		if err := rows.Scan(
			&e.ID, &e.Sequence, &ts, &e.AttemptID, &e.ContentKey,
			&sources, &e.MCQScore, &e.MCQTotal, &e.SAQPending,
		); err != nil {
			return nil, fmt.Errorf("scan attempt event: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts).UTC()
		e.Sources = strings.Split(sources, "|")
		events = append(events, e)
	}
	return events, rows.Err()
}

// AttemptIndex adapts an EventRepo to quiz.AttemptIndex.
type AttemptIndex struct {
	Repo EventRepo
}

// IndexAttempt records a summary row for a stored attempt.
func (a AttemptIndex) IndexAttempt(ctx context.Context, at *quiz.Attempt) error {
	return a.Repo.AppendAttempt(ctx, AttemptEventData{
		AttemptID:  at.AttemptID,
		ContentKey: at.ContentKey,
		Sources:    at.SourceIdentity,
		MCQScore:   at.MCQScore,
		MCQTotal:   at.MCQTotal,
		SAQPending: len(at.SAQAnswers),
	})
}
