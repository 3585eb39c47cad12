package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"github.com/nikhil/teammatch/internal/config"
)

// Connect opens the MySQL pool and verifies the connection.
func Connect(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS participants (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		external_id BIGINT NOT NULL UNIQUE,
		username VARCHAR(255) NOT NULL DEFAULT '',
		skill VARCHAR(100) NOT NULL,
		experience VARCHAR(100) NOT NULL,
		registered_at DATETIME(6) NOT NULL,
		is_waiting BOOLEAN NOT NULL DEFAULT TRUE,
		INDEX idx_participants_waiting (is_waiting, registered_at)
	)`,
	`CREATE TABLE IF NOT EXISTS teams (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		created_at DATETIME(6) NOT NULL,
		is_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
		channel_id BIGINT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS team_members (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		team_id BIGINT NOT NULL,
		participant_id BIGINT NOT NULL,
		has_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
		UNIQUE KEY uq_team_participant (team_id, participant_id),
		FOREIGN KEY (team_id) REFERENCES teams(id),
		FOREIGN KEY (participant_id) REFERENCES participants(id)
	)`,
	`CREATE TABLE IF NOT EXISTS channels (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		team_id BIGINT NOT NULL,
		channel_name VARCHAR(255) NOT NULL,
		created_at DATETIME(6) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		channel_id BIGINT NOT NULL,
		participant_id BIGINT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME(6) NOT NULL,
		INDEX idx_messages_channel (channel_id, id)
	)`,
}

// EnsureSchema creates the tables if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
