package auth

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

const (
	schemaVersion  = "v1"
	metaBucket     = "__meta"
	versionKey     = "version"
	sessionsBucket = "sessions"
)

// Store remembers which account an SSH key last signed into, so a returning
// client skips the login screen.
type Store struct {
	db *bolt.DB
}

type remembered struct {
	UserId    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func OpenStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(metaBucket))
		if err != nil {
			return fmt.Errorf("failed to get/create meta bucket: %w", err)
		}

		switch v := b.Get([]byte(versionKey)); string(v) {
		case "":
			if err := b.Put([]byte(versionKey), []byte(schemaVersion)); err != nil {
				return fmt.Errorf("failed to set version key: %w", err)
			}
			if _, err := tx.CreateBucket([]byte(sessionsBucket)); err != nil {
				return fmt.Errorf("failed to create sessions bucket: %w", err)
			}
			return nil
		case schemaVersion:
			return nil
		default:
			return fmt.Errorf("unknown version %q", string(v))
		}
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to update session store: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close session store: %w", err)
	}
	return nil
}

func (s *Store) Remember(fingerprint string, userId uuid.UUID) error {
	data, err := json.Marshal(remembered{UserId: userId, CreatedAt: time.Now()})
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(sessionsBucket)).Put([]byte(fingerprint), data)
	})
}

// Lookup returns the remembered account for fingerprint, uuid.Nil if none.
func (s *Store) Lookup(fingerprint string) (uuid.UUID, error) {
	var r remembered
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(sessionsBucket)).Get([]byte(fingerprint))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &r)
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to read session: %w", err)
	}
	return r.UserId, nil
}

func (s *Store) Forget(fingerprint string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(sessionsBucket)).Delete([]byte(fingerprint))
	})
}

// ForgetUser drops every remembered session of userId.
func (s *Store) ForgetUser(userId uuid.UUID) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(sessionsBucket))
		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var r remembered
			if json.Unmarshal(v, &r) == nil && r.UserId == userId {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}
