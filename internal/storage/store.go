// Package storage implements the durable SQLite-backed store for
// week-bucketed space-weather events.
//
// The store owns three concerns the cache contract depends on: keyed upserts
// with replace-on-conflict semantics, multi-statement atomic transactions for
// non-empty week writes, and cascade-deleted extras tables holding the
// summary-only projections. It is deliberately dumb about freshness; that
// policy lives above it.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/helioforecast/go-spaceweather-cache/spaceweather"
	"github.com/helioforecast/go-spaceweather-cache/weekdate"
)

// Store is a handle to one on-disk cache database. It is safe for concurrent
// use; the underlying *sql.DB pools connections.
type Store struct {
	db   *bun.DB
	path string
}

// Open opens (or creates) the cache database at path and ensures the schema
// exists. The database runs in WAL mode with foreign keys enforced so the
// extras tables cascade correctly.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("storage: database path is required")
	}

	dsn := "file:" + path + "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}
	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("storage: ping %s: %w", path, err)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	if err := createSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, path: path}, nil
}

func createSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*cachedWeek)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("storage: create cached_weeks: %w", err)
	}

	if _, err := db.NewCreateTable().
		Model((*cachedEvent)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("storage: create cached_events: %w", err)
	}

	if _, err := db.NewCreateTable().
		Model((*cmeExtras)(nil)).
		IfNotExists().
		ForeignKey(`("event_id") REFERENCES "cached_events" ("id") ON DELETE CASCADE`).
		Exec(ctx); err != nil {
		return fmt.Errorf("storage: create cme_extras: %w", err)
	}

	if _, err := db.NewCreateTable().
		Model((*flrExtras)(nil)).
		IfNotExists().
		ForeignKey(`("event_id") REFERENCES "cached_events" ("id") ON DELETE CASCADE`).
		Exec(ctx); err != nil {
		return fmt.Errorf("storage: create flr_extras: %w", err)
	}

	return nil
}

// Path returns the on-disk location of the database file.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// WeekLoadTime returns when the (week, event type) bucket was last cached.
// ok is false when the bucket was never cached.
func (s *Store) WeekLoadTime(ctx context.Context, week weekdate.Week, typ spaceweather.EventType) (loadTime time.Time, ok bool, err error) {
	var row cachedWeek
	err = s.db.NewSelect().
		Model(&row).
		Where("week_year = ?", week.Year).
		Where("week_of_year = ?", week.Week).
		Where("event_type = ?", string(typ)).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("storage: week load time %s/%s: %w", week, typ, err)
	}
	return fromMillis(row.LoadTime), true, nil
}

// MarkWeekCached upserts the week marker on its own, outside any transaction.
// It is the write path for empty-event weeks: the bucket is recorded as
// cached without storing rows.
func (s *Store) MarkWeekCached(ctx context.Context, week weekdate.Week, typ spaceweather.EventType, loadTime time.Time) error {
	if err := upsertWeekMarker(ctx, s.db, week, typ, loadTime); err != nil {
		return fmt.Errorf("storage: mark week %s/%s cached: %w", week, typ, err)
	}
	return nil
}

// StoreWeek writes the week marker, every event row and every extras row in
// one transaction. Either everything commits or nothing does; a failure
// halfway leaves no trace of the call.
func (s *Store) StoreWeek(ctx context.Context, week weekdate.Week, typ spaceweather.EventType, docs []spaceweather.Document, loadTime time.Time) error {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := upsertWeekMarker(ctx, tx, week, typ, loadTime); err != nil {
			return err
		}
		for _, doc := range docs {
			if err := upsertEvent(ctx, tx, typ, doc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("storage: store week %s/%s: %w", week, typ, err)
	}
	return nil
}

func upsertWeekMarker(ctx context.Context, idb bun.IDB, week weekdate.Week, typ spaceweather.EventType, loadTime time.Time) error {
	marker := &cachedWeek{
		WeekYear:   week.Year,
		WeekOfYear: week.Week,
		EventType:  string(typ),
		LoadTime:   toMillis(loadTime),
	}
	_, err := idb.NewInsert().
		Model(marker).
		On("CONFLICT (week_year, week_of_year, event_type) DO UPDATE").
		Set("load_time = EXCLUDED.load_time").
		Exec(ctx)
	return err
}

func upsertEvent(ctx context.Context, idb bun.IDB, typ spaceweather.EventType, doc spaceweather.Document) error {
	event := doc.Event
	if err := event.Validate(); err != nil {
		return err
	}
	if event.Type != typ {
		return fmt.Errorf("event %s has type %s, batch is %s", event.ID, event.Type, typ)
	}
	if len(doc.Raw) == 0 {
		return fmt.Errorf("event %s has no raw payload", event.ID)
	}

	row := &cachedEvent{
		ID:        event.ID,
		EventType: string(event.Type),
		Time:      toMillis(event.Time),
		Payload:   doc.Raw,
	}
	if _, err := idb.NewInsert().
		Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("event_type = EXCLUDED.event_type").
		Set(`"time" = EXCLUDED."time"`).
		Set("payload = EXCLUDED.payload").
		Exec(ctx); err != nil {
		return err
	}

	summary := event.Summarize()
	switch event.Type {
	case spaceweather.TypeCME:
		extras := &cmeExtras{EventID: event.ID, MostAccurate: summary.MostAccurateAnalysis}
		if _, err := idb.NewInsert().
			Model(extras).
			On("CONFLICT (event_id) DO UPDATE").
			Set("most_accurate = EXCLUDED.most_accurate").
			Exec(ctx); err != nil {
			return err
		}
	case spaceweather.TypeFLR:
		extras := &flrExtras{EventID: event.ID, ClassType: summary.ClassType}
		if _, err := idb.NewInsert().
			Model(extras).
			On("CONFLICT (event_id) DO UPDATE").
			Set("class_type = EXCLUDED.class_type").
			Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Summaries lists the summary projection for one event type restricted to
// [from, to), most recent first. Extras tables are joined only for the types
// that have one, so no payload is ever deserialized here.
func (s *Store) Summaries(ctx context.Context, typ spaceweather.EventType, from, to time.Time) ([]spaceweather.Summary, error) {
	q := s.db.NewSelect().
		TableExpr("cached_events AS e").
		ColumnExpr("e.id AS id").
		ColumnExpr(`e."time" AS time`).
		Where("e.event_type = ?", string(typ)).
		Where(`e."time" >= ?`, toMillis(from)).
		Where(`e."time" < ?`, toMillis(to)).
		OrderExpr(`e."time" DESC`)

	switch typ {
	case spaceweather.TypeCME:
		q = q.ColumnExpr("COALESCE(x.most_accurate, 0) AS most_accurate").
			Join("LEFT JOIN cme_extras AS x ON x.event_id = e.id")
	case spaceweather.TypeFLR:
		q = q.ColumnExpr("COALESCE(f.class_type, '') AS class_type").
			Join("LEFT JOIN flr_extras AS f ON f.event_id = e.id")
	}

	var rows []summaryRow
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("storage: summaries %s: %w", typ, err)
	}

	summaries := make([]spaceweather.Summary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, spaceweather.Summary{
			ID:                   row.ID,
			Type:                 typ,
			Time:                 fromMillis(row.Time),
			MostAccurateAnalysis: row.MostAccurate,
			ClassType:            row.ClassType,
		})
	}
	return summaries, nil
}

// EventPayload returns the raw canonical document for the event id, scoped to
// the event type. ok is false when no such row exists.
func (s *Store) EventPayload(ctx context.Context, id string, typ spaceweather.EventType) (raw []byte, ok bool, err error) {
	var row cachedEvent
	err = s.db.NewSelect().
		Model(&row).
		Where("id = ?", id).
		Where("event_type = ?", string(typ)).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storage: event payload %s: %w", id, err)
	}
	return row.Payload, true, nil
}
