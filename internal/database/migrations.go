package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createUsersTable,
		createEventsTable,
		createBookingsTable,
		createEventsStatusDateIndex,
		createBookingsUserIndex,
		createBookingsEventIndex,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    email VARCHAR(255) UNIQUE NOT NULL,
    name VARCHAR(255) NOT NULL,
    role VARCHAR(20) NOT NULL DEFAULT 'user',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (role IN ('user', 'organizer', 'admin'))
);`

const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
    id UUID PRIMARY KEY,
    title VARCHAR(500) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    category VARCHAR(100) NOT NULL DEFAULT '',
    location VARCHAR(255) NOT NULL DEFAULT '',
    image TEXT NOT NULL DEFAULT '',
    event_date TIMESTAMPTZ NOT NULL,
    ticket_price NUMERIC(10,2) NOT NULL DEFAULT 0,
    total_tickets INTEGER NOT NULL,
    remaining_tickets INTEGER NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'pending',
    organizer_id UUID NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (ticket_price >= 0),
    CHECK (total_tickets > 0),
    CHECK (remaining_tickets >= 0 AND remaining_tickets <= total_tickets),
    CHECK (status IN ('pending', 'approved', 'rejected'))
);`

// event_id carries no foreign key on purpose: bookings are retained as
// history after their event is deleted.
const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL,
    event_id UUID NOT NULL,
    tickets_booked INTEGER NOT NULL,
    total_price NUMERIC(10,2) NOT NULL DEFAULT 0,
    status VARCHAR(20) NOT NULL DEFAULT 'pending',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (tickets_booked > 0),
    CHECK (status IN ('pending', 'confirmed', 'canceled'))
);`

const createEventsStatusDateIndex = `
CREATE INDEX IF NOT EXISTS events_status_date_idx
ON events (status, event_date);`

const createBookingsUserIndex = `
CREATE INDEX IF NOT EXISTS bookings_user_status_created_idx
ON bookings (user_id, status, created_at DESC);`

const createBookingsEventIndex = `
CREATE INDEX IF NOT EXISTS bookings_event_status_idx
ON bookings (event_id, status);`
