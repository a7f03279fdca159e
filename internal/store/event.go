package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Event is one recognized gesture.
type Event struct {
	ID        string
	Gesture   string
	WristX    int
	Hands     int
	CreatedAt time.Time
}

// EventRepository records and queries gesture events.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Record inserts e, filling in ID and CreatedAt when unset. Times are stored
// in UTC: the driver writes them as text, so ordering and range comparisons
// only hold within one zone.
func (r *EventRepository) Record(e *Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO events (id, gesture, wrist_x, hands, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Gesture, e.WristX, e.Hands, e.CreatedAt.UTC(),
	)
	return err
}

// List returns up to limit events, newest first. A non-positive limit
// returns every event.
func (r *EventRepository) List(limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT id, gesture, wrist_x, hands, created_at
		 FROM events ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		if err := rows.Scan(&e.ID, &e.Gesture, &e.WristX, &e.Hands, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// CountByGesture returns how many events were recorded per gesture label.
func (r *EventRepository) CountByGesture() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT gesture, COUNT(*) FROM events GROUP BY gesture`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var g string
		var n int
		if err := rows.Scan(&g, &n); err != nil {
			return nil, err
		}
		counts[g] = n
	}

	return counts, rows.Err()
}

// DeleteBefore removes events older than t and reports how many were removed.
func (r *EventRepository) DeleteBefore(t time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM events WHERE created_at < ?`, t.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
