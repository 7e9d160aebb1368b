package db

import (
	"context"
	"database/sql"

	"github.com/charmbracelet/log"
)

const (
	sqlCreateUsersTable = `CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE COLLATE NOCASE,
		display_name TEXT NOT NULL DEFAULT '',
		avatar TEXT NOT NULL DEFAULT '',
		bio TEXT NOT NULL DEFAULT '',
		nationality TEXT NOT NULL DEFAULT '',
		languages TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL UNIQUE COLLATE NOCASE,
		password_hash TEXT NOT NULL,
		birthday TIMESTAMP,
		created_at TIMESTAMP NOT NULL
	)`

	sqlCreateStreamsTable = `CREATE TABLE IF NOT EXISTS streams (
		id TEXT NOT NULL PRIMARY KEY,
		streamer_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		thumbnail TEXT NOT NULL DEFAULT '',
		viewer_count INTEGER NOT NULL DEFAULT 0,
		category TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT '',
		is_live INTEGER NOT NULL DEFAULT 1,
		started_at TIMESTAMP NOT NULL,
		ended_at TIMESTAMP
	)`

	sqlCreateChatMessagesTable = `CREATE TABLE IF NOT EXISTS chat_messages (
		id TEXT NOT NULL PRIMARY KEY,
		stream_id TEXT NOT NULL REFERENCES streams(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		username TEXT NOT NULL,
		message TEXT NOT NULL,
		gift_id TEXT,
		created_at TIMESTAMP NOT NULL
	)`

	sqlCreateFollowsTable = `CREATE TABLE IF NOT EXISTS follows (
		follower_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		following_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (follower_id, following_id)
	)`

	sqlCreateNotificationsTable = `CREATE TABLE IF NOT EXISTS notifications (
		id TEXT NOT NULL PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		actor_id TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		read INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	)`

	sqlCreateIndices = `
		CREATE INDEX IF NOT EXISTS idx_streams_live ON streams(is_live, started_at DESC);
		CREATE INDEX IF NOT EXISTS idx_streams_streamer ON streams(streamer_id);
		CREATE INDEX IF NOT EXISTS idx_chat_stream ON chat_messages(stream_id, created_at);
		CREATE INDEX IF NOT EXISTS idx_follows_following ON follows(following_id);
		CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at DESC);
	`
)

// RunMigrations executes all database migrations
func (db *DB) RunMigrations() error {
	return db.wrapTransaction(context.Background(), func(tx *sql.Tx) error {
		tables := []struct {
			name string
			sql  string
		}{
			{"users", sqlCreateUsersTable},
			{"streams", sqlCreateStreamsTable},
			{"chat_messages", sqlCreateChatMessagesTable},
			{"follows", sqlCreateFollowsTable},
			{"notifications", sqlCreateNotificationsTable},
		}
		for _, t := range tables {
			if err := db.createTableIfNotExists(tx, t.sql, t.name); err != nil {
				return err
			}
		}

		if _, err := tx.Exec(sqlCreateIndices); err != nil {
			log.Warn("Failed to create indices", "err", err)
		}

		db.extendExistingTables(tx)
		return nil
	})
}

func (db *DB) createTableIfNotExists(tx *sql.Tx, createSQL string, tableName string) error {
	_, err := tx.Exec(createSQL)
	if err != nil {
		log.Error("Error creating table", "table", tableName, "err", err)
		return err
	}
	log.Debug("Table created or already exists", "table", tableName)
	return nil
}

// extendExistingTables adds columns introduced after the first release.
// Errors are ignored because the column usually exists already.
func (db *DB) extendExistingTables(tx *sql.Tx) {
	tx.Exec("ALTER TABLE streams ADD COLUMN category TEXT NOT NULL DEFAULT ''")
	tx.Exec("ALTER TABLE streams ADD COLUMN tags TEXT NOT NULL DEFAULT ''")
	tx.Exec("ALTER TABLE notifications ADD COLUMN actor_id TEXT NOT NULL DEFAULT ''")
}
