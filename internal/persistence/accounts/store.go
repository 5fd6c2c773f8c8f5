// Package accounts keeps credentials and player saves in a bbolt file.
package accounts

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bbolt "go.etcd.io/bbolt"
	"golang.org/x/crypto/bcrypt"

	"realmgate.io/internal/sim/model"
)

var (
	bucketAccounts = []byte("accounts")
	bucketPlayers  = []byte("players")
)

var ErrExists = errors.New("accounts: username taken")

type account struct {
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Hash      []byte    `json:"hash"`
	CreatedAt time.Time `json:"created_at"`
}

// Store implements the world's account and save hooks.
type Store struct {
	db   *bbolt.DB
	cost int
}

func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("accounts: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketAccounts, bucketPlayers} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("accounts: create buckets: %w", err)
	}
	return &Store{db: db, cost: bcrypt.DefaultCost}, nil
}

// SetCost changes the bcrypt cost for new registrations.
func (s *Store) SetCost(cost int) { s.cost = cost }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Exists(username string) (bool, error) {
	var ok bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		ok = tx.Bucket(bucketAccounts).Get([]byte(username)) != nil
		return nil
	})
	return ok, err
}

func (s *Store) Register(username, password, email string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("accounts: hash %s: %w", username, err)
	}
	data, err := json.Marshal(account{Username: username, Email: email, Hash: hash, CreatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("accounts: encode %s: %w", username, err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketAccounts)
		if b.Get([]byte(username)) != nil {
			return fmt.Errorf("register %s: %w", username, ErrExists)
		}
		return b.Put([]byte(username), data)
	})
}

// Verify reports whether password matches. Unknown usernames verify false.
func (s *Store) Verify(username, password string) (bool, error) {
	var a account
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketAccounts).Get([]byte(username))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, &a)
	})
	if err != nil {
		return false, fmt.Errorf("accounts: load %s: %w", username, err)
	}
	if !found {
		return false, nil
	}
	err = bcrypt.CompareHashAndPassword(a.Hash, []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("accounts: verify %s: %w", username, err)
	}
}

func (s *Store) LoadPlayer(username string) (model.PlayerSave, bool, error) {
	var (
		save  model.PlayerSave
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketPlayers).Get([]byte(username))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, &save)
	})
	if err != nil {
		return model.PlayerSave{}, false, fmt.Errorf("accounts: load player %s: %w", username, err)
	}
	return save, found, nil
}

func (s *Store) SavePlayer(save model.PlayerSave) error {
	if save.Username == "" {
		return errors.New("accounts: save without username")
	}
	data, err := json.Marshal(save)
	if err != nil {
		return fmt.Errorf("accounts: encode player %s: %w", save.Username, err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPlayers).Put([]byte(save.Username), data)
	})
}

// Count returns the number of registered accounts and stored saves.
func (s *Store) Count() (accounts, players int, err error) {
	err = s.db.View(func(tx *bbolt.Tx) error {
		accounts = tx.Bucket(bucketAccounts).Stats().KeyN
		players = tx.Bucket(bucketPlayers).Stats().KeyN
		return nil
	})
	return accounts, players, err
}
