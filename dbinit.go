package main

import (
	"database/sql"
	"fmt"
)

const schemaVersion = 1

func dbInit(db *sql.DB) error {
	var dbVersion int
	err := db.QueryRow("SELECT version FROM db_version WHERE name='slotbot'").Scan(&dbVersion)
	if err != nil {
		_, err = db.Exec(`CREATE TABLE IF NOT EXISTS db_version (
			name TEXT PRIMARY KEY,
			version INTEGER
		)`)
		if err != nil {
			return fmt.Errorf("error creating db_version table: %w", err)
		}
		_, err = db.Exec(`INSERT OR IGNORE INTO db_version (name, version) VALUES ('slotbot', 0)`)
		if err != nil {
			return fmt.Errorf("error initializing db_version table: %w", err)
		}
		dbVersion = 0
	}

	if dbVersion == 0 {
		_, err = db.Exec(`CREATE TABLE IF NOT EXISTS tokens (
		account_name TEXT PRIMARY KEY,
		token TEXT)`)
		if err != nil {
			return fmt.Errorf("error creating tokens table: %w", err)
		}

		_, err = db.Exec(`CREATE TABLE IF NOT EXISTS bookings (
			event_id TEXT,
			calendar_id TEXT,
			provider TEXT,
			candidate_id TEXT,
			requester_id TEXT,
			slot TEXT,
			start_time TEXT,
			end_time TEXT,
			link TEXT,
			created_at TEXT,
			PRIMARY KEY (calendar_id, event_id)
		)`)
		if err != nil {
			return fmt.Errorf("error creating bookings table: %w", err)
		}

		dbVersion = schemaVersion
		_, err = db.Exec(`UPDATE db_version SET version = ? WHERE name = 'slotbot'`, dbVersion)
		if err != nil {
			return fmt.Errorf("error updating db_version table: %w", err)
		}
	}
	return nil
}
