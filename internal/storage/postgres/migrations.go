package postgres

import "github.com/jmoiron/sqlx"

// statements set up the schema; each is idempotent.
var statements = []string{
	`CREATE TABLE IF NOT EXISTS circles (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_by TEXT NOT NULL,
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS members (
		circle_id TEXT NOT NULL REFERENCES circles(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL,
		display_name TEXT NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('admin', 'member')),
		joined_at BIGINT NOT NULL,
		PRIMARY KEY (circle_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		circle_id TEXT NOT NULL REFERENCES circles(id) ON DELETE CASCADE,
		id TEXT NOT NULL,
		title TEXT NOT NULL,
		fee_per_person BIGINT NOT NULL DEFAULT 0 CHECK (fee_per_person >= 0),
		status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'closed')),
		settled_amount BIGINT,
		settlement_mode TEXT,
		closed_at BIGINT,
		created_at BIGINT NOT NULL,
		PRIMARY KEY (circle_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS participants (
		circle_id TEXT NOT NULL,
		event_id TEXT NOT NULL,
		id TEXT NOT NULL,
		display_name TEXT NOT NULL,
		paid BOOLEAN NOT NULL DEFAULT FALSE,
		created_at BIGINT NOT NULL,
		PRIMARY KEY (circle_id, event_id, id),
		FOREIGN KEY (circle_id, event_id) REFERENCES events(circle_id, id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		circle_id TEXT NOT NULL,
		event_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		user_name TEXT NOT NULL,
		type TEXT NOT NULL,
		description TEXT NOT NULL,
		total_amount BIGINT CHECK (total_amount >= 0),
		category TEXT,
		is_reimbursed BOOLEAN,
		created_at BIGINT NOT NULL,
		FOREIGN KEY (circle_id, event_id) REFERENCES events(circle_id, id) ON DELETE CASCADE
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_one_collection
		ON transactions(circle_id, event_id, user_id) WHERE type = 'collection'`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_event ON transactions(circle_id, event_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_participants_event ON participants(circle_id, event_id)`,
}

func runMigrations(db *sqlx.DB) error {
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
