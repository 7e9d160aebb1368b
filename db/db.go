// Package db is the live provider: every operation goes straight to sqlite and
// chat changes are fanned out to subscribers through a backend.Hub.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AustinHatem/crema-live/backend"
	"github.com/AustinHatem/crema-live/domain"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// DB is the database struct.
type DB struct {
	db  *sql.DB
	hub *backend.Hub
}

var _ backend.Provider = (*DB)(nil)

type scanner interface {
	Scan(dest ...any) error
}

const (
	// user columns, expects the users table aliased as u
	userColumns = `u.id, u.username, u.display_name, u.avatar, u.bio, u.nationality, u.languages, u.email, u.birthday, u.created_at,
		(SELECT COUNT(*) FROM follows WHERE following_id = u.id),
		(SELECT COUNT(*) FROM follows WHERE follower_id = u.id),
		EXISTS(SELECT 1 FROM streams WHERE streamer_id = u.id AND is_live = 1)`

	sqlInsertUser = `INSERT INTO users(id, username, display_name, email, password_hash, birthday, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	sqlUpdateUser = `UPDATE users SET display_name = ?, bio = ?, avatar = ?, nationality = ?, languages = ? WHERE id = ?`
	sqlDeleteUser = `DELETE FROM users WHERE id = ?`

	// actor_id is not a foreign key
	sqlDeleteActorNotifications = `DELETE FROM notifications WHERE actor_id = ?`

	sqlSelectUserById       = `SELECT ` + userColumns + ` FROM users u WHERE u.id = ?`
	sqlSelectUserByUsername = `SELECT ` + userColumns + ` FROM users u WHERE u.username = ? COLLATE NOCASE`
	sqlSearchUsers          = `SELECT ` + userColumns + ` FROM users u WHERE u.username LIKE ? ESCAPE '\' ORDER BY u.username LIMIT ?`
	sqlSelectCredentials    = `SELECT id, password_hash FROM users WHERE email = ? COLLATE NOCASE`
	sqlCountUsername        = `SELECT COUNT(*) FROM users WHERE username = ? COLLATE NOCASE`
	sqlCountEmail           = `SELECT COUNT(*) FROM users WHERE email = ? COLLATE NOCASE`
)

// Open connects to the sqlite database at path and runs the migrations.
func Open(path string) (*DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=synchronous(NORMAL)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	if path == ":memory:" {
		// every connection gets its own in-memory database
		sqlDB.SetMaxOpenConns(1)
		if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
			sqlDB.Close()
			return nil, err
		}
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(time.Hour)

		var journalMode string
		if err := sqlDB.QueryRow("PRAGMA journal_mode=WAL").Scan(&journalMode); err != nil {
			log.Warn("Failed to enable WAL mode", "err", err)
		} else {
			log.Info("Database opened", "path", path, "journal", journalMode)
		}
	}

	d := &DB{db: sqlDB, hub: backend.NewHub()}
	if err := d.RunMigrations(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}
	return d, nil
}

func (db *DB) Name() string { return "sqlite" }

func (db *DB) Close() error {
	return db.db.Close()
}

// wrapTransaction runs the given function within a transaction, retrying
// while the database reports SQLITE_BUSY.
func (db *DB) wrapTransaction(ctx context.Context, f func(tx *sql.Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()
	for {
		tx, err := db.db.BeginTx(ctx, nil)
		if err != nil {
			log.Error("Error starting transaction", "err", err)
			return err
		}
		err = f(tx)
		if err == nil {
			err = tx.Commit()
			if err != nil {
				log.Error("Error committing transaction", "err", err)
			}
			return err
		}
		tx.Rollback()
		if isBusy(err) && ctx.Err() == nil {
			continue
		}
		return err
	}
}

func isBusy(err error) bool {
	var serr *sqlite.Error
	return errors.As(err, &serr) && serr.Code() == sqlitelib.SQLITE_BUSY
}

func now() time.Time {
	return time.Now().UTC()
}

func joinList(items []string) string {
	return strings.Join(items, ",")
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func scanUser(s scanner, u *domain.User, extra ...any) error {
	var languages string
	var birthday sql.NullTime
	dest := append(extra,
		&u.Id, &u.Username, &u.DisplayName, &u.Avatar, &u.Bio, &u.Nationality, &languages,
		&u.Email, &birthday, &u.CreatedAt, &u.Followers, &u.Following, &u.IsStreaming,
	)
	if err := s.Scan(dest...); err != nil {
		return err
	}
	u.Languages = splitList(languages)
	if birthday.Valid {
		u.Birthday = birthday.Time
	}
	return nil
}

func (db *DB) readUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := scanUser(db.db.QueryRowContext(ctx, query, arg), &u)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, backend.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading user: %w", err)
	}
	return &u, nil
}

func (db *DB) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return db.readUser(ctx, sqlSelectUserById, id)
}

func (db *DB) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return db.readUser(ctx, sqlSelectUserByUsername, username)
}

func (db *DB) SearchUsers(ctx context.Context, term string) ([]domain.User, error) {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
	rows, err := db.db.QueryContext(ctx, sqlSearchUsers, escaped+"%", backend.SearchResultsLimit)
	if err != nil {
		return nil, fmt.Errorf("searching users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := scanUser(rows, &u); err != nil {
			return users, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (db *DB) UpdateProfile(ctx context.Context, id uuid.UUID, update domain.ProfileUpdate) (*domain.User, error) {
	u, err := db.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if update.Empty() {
		return u, nil
	}
	update.Apply(u)
	err = db.wrapTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlUpdateUser, u.DisplayName, u.Bio, u.Avatar, u.Nationality, joinList(u.Languages), id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return u, nil
}

func (db *DB) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	var n int
	if err := db.db.QueryRowContext(ctx, sqlCountUsername, username).Scan(&n); err != nil {
		return false, err
	}
	return n == 0, nil
}

func (db *DB) CreateAccount(ctx context.Context, email, password, username string, birthday time.Time) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	id := uuid.New()
	err = db.wrapTransaction(ctx, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRow(sqlCountUsername, username).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return backend.ErrUsernameTaken
		}
		if err := tx.QueryRow(sqlCountEmail, email).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return backend.ErrEmailTaken
		}
		_, err := tx.Exec(sqlInsertUser, id, username, username, email, string(hash), birthday.UTC(), now())
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Info("Account created", "username", username)
	return db.GetUser(ctx, id)
}

func (db *DB) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	var id uuid.UUID
	var hash string
	err := db.db.QueryRowContext(ctx, sqlSelectCredentials, email).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, backend.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("reading credentials: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, backend.ErrInvalidCredentials
	}
	return db.GetUser(ctx, id)
}

// DeleteAccount removes the user. Streams, chat, follows and received
// notifications cascade; notifications about the user go too.
func (db *DB) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	return db.wrapTransaction(ctx, func(tx *sql.Tx) error {
		res, err := tx.Exec(sqlDeleteUser, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return backend.ErrNotFound
		}
		_, err = tx.Exec(sqlDeleteActorNotifications, id)
		return err
	})
}
