package repositories

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"chat-direct/domain"
	"chat-direct/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IUserRepository interface {
	CreateUser(email, name, hashedPassword string) (string, error)
	GetUserByEmail(email string) (User, error)
	GetUserByID(id string) (User, error)
	ListOthers(viewerID string) ([]domain.User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// User is the repository-level representation of an account.
// The password hash never leaves this layer except for comparison.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Two keyspaces: "user:{email}" holds the record, "uid:{id}" points back to
// the email so lookups by id stay a single extra Get.
func emailKey(email string) []byte { return []byte("user:" + email) }
func idKey(id string) []byte       { return []byte("uid:" + id) }

// CreateUser persists a new account and returns its generated id.
// The email acts as the uniqueness constraint.
func (u UserRepository) CreateUser(email, name, hashedPassword string) (string, error) {
	newID := uuid.New().String()
	record := User{
		ID:           newID,
		Email:        email,
		Name:         name,
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		key := emailKey(email)
		if _, err = txn.Get(key); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if err = txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(idKey(newID), []byte(email))
	})

	return newID, err
}

func (u UserRepository) GetUserByEmail(email string) (User, error) {
	var record User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey(email))
		if err != nil {
			return errors.ErrUserNotFound
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	return record, err
}

func (u UserRepository) GetUserByID(id string) (User, error) {
	var email string
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(idKey(id))
		if err != nil {
			return errors.ErrUserNotFound
		}
		return item.Value(func(val []byte) error {
			email = string(val)
			return nil
		})
	})
	if err != nil {
		return User{}, err
	}
	return u.GetUserByEmail(email)
}

// ListOthers returns every registered user except the viewer, in stable key
// order. This is the sidebar's candidate list.
func (u UserRepository) ListOthers(viewerID string) ([]domain.User, error) {
	var users []domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		prefix := []byte("user:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var record User
				if err := json.Unmarshal(val, &record); err != nil {
					return err
				}
				if record.ID == viewerID {
					return nil
				}
				users = append(users, toUser(record))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return users, err
}

func toUser(record User) domain.User {
	return domain.User{
		ID:        record.ID,
		Email:     record.Email,
		Name:      DisplayName(record),
		CreatedAt: record.CreatedAt,
	}
}

// DisplayName falls back to the mailbox part of the email when the account
// has no explicit name.
func DisplayName(record User) string {
	if record.Name != "" {
		return record.Name
	}
	return strings.SplitN(record.Email, "@", 2)[0]
}
