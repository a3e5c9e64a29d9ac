package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Booking is a calendar event the bot created.
type Booking struct {
	EventID     string
	CalendarID  string
	Provider    string
	CandidateID string
	RequesterID string
	Slot        string
	Start       time.Time
	End         time.Time
	Link        string
	CreatedAt   time.Time
}

// BookingStore keeps the booking log in sqlite.
type BookingStore struct {
	db *sql.DB
}

func NewBookingStore(db *sql.DB) *BookingStore {
	return &BookingStore{db: db}
}

func (s *BookingStore) RecordBooking(ctx context.Context, b *Booking) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO bookings
		(event_id, calendar_id, provider, candidate_id, requester_id, slot, start_time, end_time, link, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.EventID, b.CalendarID, b.Provider, b.CandidateID, b.RequesterID, b.Slot,
		b.Start.UTC().Format(time.RFC3339), b.End.UTC().Format(time.RFC3339),
		b.Link, b.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("error inserting booking: %w", err)
	}
	return nil
}

// ListBookings returns bookings starting at or after from, earliest first.
func (s *BookingStore) ListBookings(ctx context.Context, from time.Time) ([]*Booking, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT event_id, calendar_id, provider, candidate_id, requester_id,
		slot, start_time, end_time, link, created_at
		FROM bookings WHERE start_time >= ? ORDER BY start_time`, from.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("error querying bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		var b Booking
		var start, end, created string
		if err := rows.Scan(&b.EventID, &b.CalendarID, &b.Provider, &b.CandidateID, &b.RequesterID,
			&b.Slot, &start, &end, &b.Link, &created); err != nil {
			return nil, fmt.Errorf("error scanning booking row: %w", err)
		}
		b.Start, _ = time.Parse(time.RFC3339, start)
		b.End, _ = time.Parse(time.RFC3339, end)
		b.CreatedAt, _ = time.Parse(time.RFC3339, created)
		bookings = append(bookings, &b)
	}
	return bookings, rows.Err()
}

// GetBooking looks a booking up by its key, the calendar and the event id.
func (s *BookingStore) GetBooking(ctx context.Context, calendarID, eventID string) (*Booking, error) {
	var b Booking
	var start, end string
	err := s.db.QueryRowContext(ctx, `SELECT event_id, calendar_id, provider, slot, start_time, end_time, link
		FROM bookings WHERE calendar_id = ? AND event_id = ?`, calendarID, eventID).
		Scan(&b.EventID, &b.CalendarID, &b.Provider, &b.Slot, &start, &end, &b.Link)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("booking %s does not exist in calendar %s", eventID, calendarID)
	}
	if err != nil {
		return nil, fmt.Errorf("error retrieving booking: %w", err)
	}
	b.Start, _ = time.Parse(time.RFC3339, start)
	b.End, _ = time.Parse(time.RFC3339, end)
	return &b, nil
}

func (s *BookingStore) DeleteBooking(ctx context.Context, calendarID, eventID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM bookings WHERE calendar_id = ? AND event_id = ?`, calendarID, eventID)
	if err != nil {
		return fmt.Errorf("error deleting booking: %w", err)
	}
	return nil
}

// PruneBefore drops records of interviews that ended before t.
func (s *BookingStore) PruneBefore(ctx context.Context, t time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM bookings WHERE end_time < ?`, t.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("error pruning bookings: %w", err)
	}
	return result.RowsAffected()
}
