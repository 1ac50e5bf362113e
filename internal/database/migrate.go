package database

import (
	"database/sql"
	"fmt"
	"strings"
)

// Schema statements are written in the dialect MySQL and SQLite share:
// VARCHAR/TEXT/BIGINT/DOUBLE column types, unix-integer timestamps and
// table-level UNIQUE constraints. Primary keys are application-generated
// UUID strings, so no auto-increment syntax is needed.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS members (
		id            VARCHAR(36) PRIMARY KEY,
		username      VARCHAR(64)  NOT NULL,
		nickname      VARCHAR(64)  NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		created_at    BIGINT       NOT NULL,
		UNIQUE (username)
	)`,
	`CREATE TABLE IF NOT EXISTS profiles (
		member_id  VARCHAR(36) PRIMARY KEY,
		avatar_url VARCHAR(512) NOT NULL DEFAULT '',
		reputation DOUBLE       NOT NULL DEFAULT 36.5,
		updated_at BIGINT       NOT NULL,
		FOREIGN KEY (member_id) REFERENCES members(id)
	)`,
	`CREATE TABLE IF NOT EXISTS rooms (
		id         VARCHAR(36) PRIMARY KEY,
		name       VARCHAR(128) NOT NULL,
		kind       VARCHAR(16)  NOT NULL,
		capacity   INT          NOT NULL,
		occupancy  INT          NOT NULL DEFAULT 0,
		created_at BIGINT       NOT NULL,
		updated_at BIGINT       NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS room_members (
		room_id   VARCHAR(36) NOT NULL,
		member_id VARCHAR(36) NOT NULL,
		joined_at BIGINT      NOT NULL,
		PRIMARY KEY (room_id, member_id),
		FOREIGN KEY (room_id)   REFERENCES rooms(id),
		FOREIGN KEY (member_id) REFERENCES members(id)
	)`,
	`CREATE TABLE IF NOT EXISTS meetups (
		id            VARCHAR(36) PRIMARY KEY,
		room_id       VARCHAR(36)  NOT NULL,
		author_id     VARCHAR(36)  NOT NULL,
		title         VARCHAR(255) NOT NULL,
		content       TEXT         NOT NULL,
		meeting_place VARCHAR(255) NOT NULL DEFAULT '',
		latitude      DOUBLE       NULL,
		longitude     DOUBLE       NULL,
		deadline      BIGINT       NOT NULL DEFAULT 0,
		status        VARCHAR(16)  NOT NULL DEFAULT 'OPEN',
		created_at    BIGINT       NOT NULL,
		UNIQUE (room_id),
		FOREIGN KEY (room_id)   REFERENCES rooms(id),
		FOREIGN KEY (author_id) REFERENCES members(id)
	)`,
	`CREATE TABLE IF NOT EXISTS evaluations (
		id           VARCHAR(36) PRIMARY KEY,
		meetup_id    VARCHAR(36) NOT NULL,
		evaluator_id VARCHAR(36) NOT NULL,
		evaluated_id VARCHAR(36) NOT NULL,
		kind         VARCHAR(16) NOT NULL,
		created_at   BIGINT      NOT NULL,
		UNIQUE (meetup_id, evaluator_id, evaluated_id),
		FOREIGN KEY (meetup_id)    REFERENCES meetups(id),
		FOREIGN KEY (evaluator_id) REFERENCES members(id),
		FOREIGN KEY (evaluated_id) REFERENCES members(id)
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id           VARCHAR(36)  PRIMARY KEY,
		recipient_id VARCHAR(36)  NOT NULL,
		kind         VARCHAR(32)  NOT NULL,
		title        VARCHAR(255) NOT NULL,
		content      TEXT         NOT NULL,
		meetup_id    VARCHAR(36)  NOT NULL DEFAULT '',
		is_read      BOOLEAN      NOT NULL DEFAULT FALSE,
		created_at   BIGINT       NOT NULL,
		UNIQUE (recipient_id, meetup_id, kind),
		FOREIGN KEY (recipient_id) REFERENCES members(id)
	)`,
}

// MySQL has no IF NOT EXISTS for CREATE INDEX, so these are applied
// separately and "already exists" failures are tolerated.
var indexes = []string{
	`CREATE INDEX idx_meetups_status_created ON meetups (status, created_at)`,
	`CREATE INDEX idx_evaluations_evaluated ON evaluations (evaluated_id, created_at)`,
	`CREATE INDEX idx_notifications_recipient ON notifications (recipient_id, created_at)`,
}

// Migrate applies the schema. Every statement is idempotent (or its
// failure on re-run is ignored), so calling this on each startup is safe.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	for _, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil && !indexExists(err) {
			return fmt.Errorf("index creation failed: %w", err)
		}
	}
	return nil
}

func indexExists(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "already exists") || // sqlite
		strings.Contains(msg, "Duplicate key name") // mysql 1061
}
