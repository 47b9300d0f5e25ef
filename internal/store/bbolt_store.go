package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"lucas/internal/types"
)

// Bucket and key layout mirrors the web client's localStorage schema:
// a single `chatSessions` entry plus one `messages_<id>` entry per
// session.
var (
	bucketSessions = []byte("sessions")
	bucketMessages = []byte("messages")
	keySessionList = []byte("chatSessions")
)

const messageKeyPrefix = "messages_"

type BboltSessionStore struct {
	db *bolt.DB
	mu sync.Mutex
}

func NewBboltSessionStore(path string) (*BboltSessionStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("session store db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BboltSessionStore{db: db}, nil
}

func initSchema(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketSessions); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(bucketMessages); err != nil {
			return err
		}
		return nil
	})
}

func (s *BboltSessionStore) LoadSessions() ([]types.ChatSession, error) {
	out := make([]types.ChatSession, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		if b == nil {
			return nil
		}
		raw := b.Get(keySessionList)
		if len(raw) == 0 {
			return nil
		}
		return json.Unmarshal(raw, &out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BboltSessionStore) SaveSessions(sessions []types.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(sessions)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		if b == nil {
			return errors.New("sessions bucket missing")
		}
		return b.Put(keySessionList, raw)
	})
}

func (s *BboltSessionStore) LoadMessages(sessionID string) ([]types.Message, bool, error) {
	var (
		out []types.Message
		ok  bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMessages)
		if b == nil {
			return nil
		}
		raw := b.Get(messageKey(sessionID))
		if len(raw) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return err
		}
		ok = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, ok, nil
}

func (s *BboltSessionStore) SaveMessages(sessionID string, messages []types.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(sessionID) == "" {
		return errors.New("session id is required")
	}
	raw, err := json.Marshal(messages)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMessages)
		if b == nil {
			return errors.New("messages bucket missing")
		}
		return b.Put(messageKey(sessionID), raw)
	})
}

func (s *BboltSessionStore) DeleteMessages(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMessages)
		if b == nil {
			return errors.New("messages bucket missing")
		}
		key := messageKey(sessionID)
		if b.Get(key) == nil {
			return nil
		}
		return b.Delete(key)
	})
}

func (s *BboltSessionStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func messageKey(sessionID string) []byte {
	return []byte(messageKeyPrefix + sessionID)
}
