package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AustinHatem/crema-live/backend"
	"github.com/AustinHatem/crema-live/domain"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const (
	sqlInsertChatMessage = `INSERT INTO chat_messages(id, stream_id, user_id, username, message, gift_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`

	// newest n, returned oldest first
	sqlSelectChatMessages = `SELECT id, stream_id, user_id, username, message, gift_id, created_at FROM (
		SELECT rowid AS seq, id, stream_id, user_id, username, message, gift_id, created_at FROM chat_messages
		WHERE stream_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	) ORDER BY created_at ASC, seq ASC`
)

// SendChatMessage stores msg and publishes the updated history.
func (db *DB) SendChatMessage(ctx context.Context, streamId uuid.UUID, msg domain.ChatMessage) error {
	if msg.Id == uuid.Nil {
		msg.Id = uuid.New()
	}
	ts := msg.Timestamp.UTC()
	if msg.Timestamp.IsZero() {
		ts = now()
	}
	var giftId sql.NullString
	if msg.Gift != nil {
		giftId = sql.NullString{String: msg.Gift.Id, Valid: true}
	}

	err := db.wrapTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlInsertChatMessage, msg.Id, streamId, msg.UserId, msg.Username, msg.Message, giftId, ts)
		return err
	})
	if err != nil {
		return fmt.Errorf("sending chat message: %w", err)
	}

	msgs, err := db.ChatMessages(ctx, streamId)
	if err != nil {
		log.Warn("Failed to reload chat after send", "stream", streamId, "err", err)
		return nil
	}
	db.hub.Publish(streamId, msgs)
	return nil
}

func (db *DB) ChatMessages(ctx context.Context, streamId uuid.UUID) ([]domain.ChatMessage, error) {
	rows, err := db.db.QueryContext(ctx, sqlSelectChatMessages, streamId, backend.ChatHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("reading chat: %w", err)
	}
	defer rows.Close()

	var msgs []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		var giftId sql.NullString
		if err := rows.Scan(&m.Id, &m.StreamId, &m.UserId, &m.Username, &m.Message, &giftId, &m.Timestamp); err != nil {
			return msgs, err
		}
		if giftId.Valid {
			if g, ok := domain.GiftById(giftId.String); ok {
				m.Gift = &g
			}
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (db *DB) SubscribeChat(ctx context.Context, streamId uuid.UUID, cb backend.ChatCallback) (func(), error) {
	unsubscribe := db.hub.Subscribe(streamId, cb)
	msgs, err := db.ChatMessages(ctx, streamId)
	if err != nil {
		unsubscribe()
		return nil, err
	}
	cb(msgs)
	return unsubscribe, nil
}

// ChatSubscribers reports how many sessions follow the chat of streamId.
func (db *DB) ChatSubscribers(streamId uuid.UUID) int {
	return db.hub.Subscribers(streamId)
}
