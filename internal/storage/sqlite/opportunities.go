package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hetulpatel/crossarb/internal/collectors"
	"github.com/hetulpatel/crossarb/internal/matches"
)

const upsertOpportunitySQL = `
INSERT INTO opportunities (
	scan_id, opp_key, question, counter_question,
	venue1, action1, odds1, venue2, action2, odds2,
	profit_pct, volume1, volume2, similarity,
	valid_resolution, resolution_reason, verdict_cached, checked_at,
	detected_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (scan_id, opp_key) DO UPDATE SET
	valid_resolution = COALESCE(excluded.valid_resolution, opportunities.valid_resolution),
	resolution_reason = COALESCE(excluded.resolution_reason, opportunities.resolution_reason),
	verdict_cached = COALESCE(excluded.verdict_cached, opportunities.verdict_cached),
	checked_at = COALESCE(excluded.checked_at, opportunities.checked_at)
`

// Name and Publish let the store act as a scan sink.
func (s *Store) Name() string {
	return "sqlite"
}

func (s *Store) Publish(ctx context.Context, scanID string, opps []matches.Opportunity) error {
	return s.InsertOpportunities(ctx, scanID, opps, time.Now())
}

// InsertOpportunities journals one scan's opportunities in a single transaction.
func (s *Store) InsertOpportunities(ctx context.Context, scanID string, opps []matches.Opportunity, detectedAt time.Time) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlite store not initialized")
	}
	if len(opps) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertOpportunitySQL)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, opp := range opps {
		p := matches.NewPayload(scanID, opp, detectedAt)
		if _, err := stmt.ExecContext(ctx, payloadArgs(&p)...); err != nil {
			return fmt.Errorf("insert opportunity %q: %w", opp.Question, err)
		}
	}
	return tx.Commit()
}

// InsertPayload journals a single consumed payload, attaching its verdict to
// an existing row for the same scan and key.
func (s *Store) InsertPayload(ctx context.Context, p *matches.Payload) error {
	if s == nil || s.db == nil || p == nil {
		return fmt.Errorf("sqlite store not initialized or payload nil")
	}
	if !p.Opportunity.Valid() {
		return fmt.Errorf("payload %s: opportunity prices %.3f + %.3f are not an arbitrage", p.Key, p.Opportunity.Odds1, p.Opportunity.Odds2)
	}
	_, err := s.db.ExecContext(ctx, upsertOpportunitySQL, payloadArgs(p)...)
	return err
}

// RecordVerdict sets the resolution verdict on every journaled row for key.
func (s *Store) RecordVerdict(ctx context.Context, key string, v *matches.ResolutionVerdict) error {
	if s == nil || s.db == nil || v == nil {
		return fmt.Errorf("sqlite store not initialized or verdict nil")
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE opportunities
SET valid_resolution = ?, resolution_reason = ?, verdict_cached = ?, checked_at = ?
WHERE opp_key = ?`,
		v.ValidResolution, v.ResolutionReason, v.Cached, formatTime(v.CheckedAt), key)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("no opportunity with key %s", key)
	}
	return nil
}

// RecentOpportunities returns up to limit journaled opportunities, newest first.
func (s *Store) RecentOpportunities(ctx context.Context, limit int) ([]matches.Payload, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT scan_id, opp_key, question, counter_question,
	venue1, action1, odds1, venue2, action2, odds2,
	profit_pct, volume1, volume2, similarity,
	valid_resolution, resolution_reason, verdict_cached, checked_at,
	detected_at
FROM opportunities
ORDER BY detected_at DESC, id DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []matches.Payload
	for rows.Next() {
		var (
			p                       matches.Payload
			o                       = &p.Opportunity
			counter, reason         sql.NullString
			checkedAt               sql.NullString
			volume1, volume2, simil sql.NullFloat64
			valid, cached           sql.NullBool
			venue1, venue2          string
			action1, action2        string
			detectedAt              string
		)
		if err := rows.Scan(
			&p.ScanID, &p.Key, &o.Question, &counter,
			&venue1, &action1, &o.Odds1, &venue2, &action2, &o.Odds2,
			&o.ProfitPercentage, &volume1, &volume2, &simil,
			&valid, &reason, &cached, &checkedAt,
			&detectedAt,
		); err != nil {
			return nil, err
		}
		o.CounterQuestion = counter.String
		o.Venue1, o.Venue2 = collectors.Venue(venue1), collectors.Venue(venue2)
		o.Action1, o.Action2 = matches.Action(action1), matches.Action(action2)
		o.Volume1, o.Volume2, o.Similarity = volume1.Float64, volume2.Float64, simil.Float64
		p.Version = 1
		p.DetectedAt = parseTime(detectedAt)
		if valid.Valid {
			p.ResolutionVerdict = &matches.ResolutionVerdict{
				ValidResolution:  valid.Bool,
				ResolutionReason: reason.String,
				Cached:           cached.Bool,
				CheckedAt:        parseTime(checkedAt.String),
			}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func payloadArgs(p *matches.Payload) []any {
	o := p.Opportunity
	var valid, reason, cached, checkedAt any
	if v := p.ResolutionVerdict; v != nil {
		valid, reason, cached, checkedAt = v.ValidResolution, v.ResolutionReason, v.Cached, formatTime(v.CheckedAt)
	}
	return []any{
		p.ScanID, p.Key, o.Question, o.CounterQuestion,
		string(o.Venue1), string(o.Action1), o.Odds1,
		string(o.Venue2), string(o.Action2), o.Odds2,
		o.ProfitPercentage, o.Volume1, o.Volume2, o.Similarity,
		valid, reason, cached, checkedAt,
		formatTime(p.DetectedAt),
	}
}

// timeLayout is fixed width so detected_at orders correctly as TEXT.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
