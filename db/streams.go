package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AustinHatem/crema-live/backend"
	"github.com/AustinHatem/crema-live/domain"
	"github.com/google/uuid"
)

const (
	streamColumns = `s.id, s.title, s.description, s.thumbnail, s.viewer_count, s.category, s.tags, s.is_live, s.started_at, s.ended_at`

	sqlSelectStreams = `SELECT ` + streamColumns + `, ` + userColumns + ` FROM streams s
		INNER JOIN users u ON u.id = s.streamer_id`

	sqlInsertStream      = `INSERT INTO streams(id, streamer_id, title, description, thumbnail, category, tags, is_live, started_at) VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?)`
	sqlSelectStreamById  = sqlSelectStreams + ` WHERE s.id = ?`
	sqlSelectLiveStreams = sqlSelectStreams + ` WHERE s.is_live = 1 ORDER BY s.started_at DESC LIMIT ?`
	sqlEndStream         = `UPDATE streams SET is_live = 0, ended_at = ? WHERE id = ?`
	sqlUpdateViewerCount = `UPDATE streams SET viewer_count = ? WHERE id = ?`
	sqlEndUserStreams    = `UPDATE streams SET is_live = 0, ended_at = ? WHERE streamer_id = ? AND is_live = 1`

	sqlSelectFollowingStreams = sqlSelectStreams + ` WHERE s.is_live = 1
		AND s.streamer_id IN (SELECT following_id FROM follows WHERE follower_id = ?)
		ORDER BY s.started_at DESC LIMIT ?`
)

func scanStream(s scanner, st *domain.Stream) error {
	var tags string
	var endedAt sql.NullTime
	err := scanUser(s, &st.Streamer,
		&st.Id, &st.Title, &st.Description, &st.Thumbnail, &st.ViewerCount, &st.Category, &tags, &st.IsLive, &st.StartedAt, &endedAt,
	)
	if err != nil {
		return err
	}
	st.Tags = splitList(tags)
	if endedAt.Valid {
		t := endedAt.Time
		st.EndedAt = &t
	}
	return nil
}

// CreateStream starts a stream. A streamer has at most one live stream, so
// any previous one is ended first.
func (db *DB) CreateStream(ctx context.Context, s domain.SaveStream) (uuid.UUID, error) {
	id := uuid.New()
	err := db.wrapTransaction(ctx, func(tx *sql.Tx) error {
		started := now()
		if _, err := tx.Exec(sqlEndUserStreams, started, s.StreamerId); err != nil {
			return err
		}
		_, err := tx.Exec(sqlInsertStream, id, s.StreamerId, s.Title, s.Description, s.Thumbnail, s.Category, joinList(s.Tags), started)
		return err
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("creating stream: %w", err)
	}
	return id, nil
}

func (db *DB) GetStream(ctx context.Context, id uuid.UUID) (*domain.Stream, error) {
	var st domain.Stream
	err := scanStream(db.db.QueryRowContext(ctx, sqlSelectStreamById, id), &st)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, backend.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading stream: %w", err)
	}
	return &st, nil
}

func (db *DB) GetLiveStreams(ctx context.Context) ([]domain.Stream, error) {
	return db.readStreams(ctx, sqlSelectLiveStreams, backend.LiveStreamLimit)
}

func (db *DB) GetFollowingStreams(ctx context.Context, userId uuid.UUID) ([]domain.Stream, error) {
	return db.readStreams(ctx, sqlSelectFollowingStreams, userId, backend.LiveStreamLimit)
}

func (db *DB) readStreams(ctx context.Context, query string, args ...any) ([]domain.Stream, error) {
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("reading streams: %w", err)
	}
	defer rows.Close()

	var streams []domain.Stream
	for rows.Next() {
		var st domain.Stream
		if err := scanStream(rows, &st); err != nil {
			return streams, err
		}
		streams = append(streams, st)
	}
	return streams, rows.Err()
}

func (db *DB) EndStream(ctx context.Context, id uuid.UUID) error {
	return db.execOne(ctx, sqlEndStream, now(), id)
}

func (db *DB) UpdateViewerCount(ctx context.Context, id uuid.UUID, count int) error {
	return db.execOne(ctx, sqlUpdateViewerCount, count, id)
}

// execOne runs a single-row update and reports ErrNotFound if nothing matched.
func (db *DB) execOne(ctx context.Context, query string, args ...any) error {
	return db.wrapTransaction(ctx, func(tx *sql.Tx) error {
		res, err := tx.Exec(query, args...)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return backend.ErrNotFound
		}
		return nil
	})
}
