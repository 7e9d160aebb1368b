package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AustinHatem/crema-live/backend"
	"github.com/AustinHatem/crema-live/domain"
	"github.com/google/uuid"
)

const (
	sqlInsertFollow    = `INSERT OR IGNORE INTO follows(follower_id, following_id, created_at) VALUES (?, ?, ?)`
	sqlDeleteFollow    = `DELETE FROM follows WHERE follower_id = ? AND following_id = ?`
	sqlIsFollowing     = `SELECT COUNT(*) FROM follows WHERE follower_id = ? AND following_id = ?`
	sqlSelectFollowers = `SELECT follower_id FROM follows WHERE following_id = ? ORDER BY created_at`

	sqlInsertNotification   = `INSERT INTO notifications(id, user_id, actor_id, type, title, message, read, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	sqlMarkNotificationRead = `UPDATE notifications SET read = 1 WHERE id = ?`

	sqlSelectNotifications = `SELECT id, user_id, actor_id, type, title, message, read, created_at FROM notifications
		WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`
)

func (db *DB) FollowUser(ctx context.Context, followerId, targetId uuid.UUID) error {
	if followerId == targetId {
		return backend.ErrSelfFollow
	}
	if _, err := db.GetUser(ctx, targetId); err != nil {
		return err
	}
	return db.wrapTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlInsertFollow, followerId, targetId, now())
		return err
	})
}

func (db *DB) UnfollowUser(ctx context.Context, followerId, targetId uuid.UUID) error {
	return db.wrapTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlDeleteFollow, followerId, targetId)
		return err
	})
}

func (db *DB) IsFollowing(ctx context.Context, followerId, targetId uuid.UUID) (bool, error) {
	var n int
	if err := db.db.QueryRowContext(ctx, sqlIsFollowing, followerId, targetId).Scan(&n); err != nil {
		return false, fmt.Errorf("reading follow: %w", err)
	}
	return n > 0, nil
}

func (db *DB) FollowerIds(ctx context.Context, userId uuid.UUID) ([]uuid.UUID, error) {
	rows, err := db.db.QueryContext(ctx, sqlSelectFollowers, userId)
	if err != nil {
		return nil, fmt.Errorf("reading followers: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (db *DB) CreateNotification(ctx context.Context, n domain.Notification) error {
	if n.Id == uuid.Nil {
		n.Id = uuid.New()
	}
	created := n.CreatedAt.UTC()
	if n.CreatedAt.IsZero() {
		created = now()
	}
	return db.wrapTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlInsertNotification, n.Id, n.UserId, n.ActorId, string(n.Type), n.Title, n.Message, n.Read, created)
		return err
	})
}

func (db *DB) GetUserNotifications(ctx context.Context, userId uuid.UUID) ([]domain.Notification, error) {
	rows, err := db.db.QueryContext(ctx, sqlSelectNotifications, userId, backend.NotificationLimit)
	if err != nil {
		return nil, fmt.Errorf("reading notifications: %w", err)
	}
	defer rows.Close()

	var list []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var typ string
		if err := rows.Scan(&n.Id, &n.UserId, &n.ActorId, &typ, &n.Title, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return list, err
		}
		n.Type = domain.NotificationType(typ)
		list = append(list, n)
	}
	return list, rows.Err()
}

func (db *DB) MarkNotificationRead(ctx context.Context, id uuid.UUID) error {
	return db.execOne(ctx, sqlMarkNotificationRead, id)
}
