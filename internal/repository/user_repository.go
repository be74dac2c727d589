package repository

import (
	"context"
	"errors"
	"fmt"

	"scratchbook-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
}

type userRepository struct {
	client *kivik.Client
	dbName string
}

func NewUserRepository(client *kivik.Client, dbName string) UserRepository {
	return &userRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	db := r.client.DB(r.dbName)

	// CouchDB only enforces uniqueness on _id, so a claim document keyed by
	// the username backstops the existence probe: when two registrations
	// race, the second Put conflicts and loses.
	claimID := fmt.Sprintf("username:%s", user.Username)
	claim := map[string]interface{}{
		"username": user.Username,
		"user_id":  user.ID,
	}
	if _, err := db.Put(ctx, claimID, claim); err != nil {
		if errors.Is(conflict(err), ErrConflict) {
			return ErrConflict
		}
		return fmt.Errorf("failed to claim username: %w", err)
	}

	docID := fmt.Sprintf("user:%s", user.ID)
	if _, err := db.Put(ctx, docID, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("user:%s", id)
	row := db.Get(ctx, docID)

	var user domain.User
	if err := row.ScanDoc(&user); err != nil {
		return nil, notFound(err)
	}

	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	db := r.client.DB(r.dbName)

	// password $exists keeps username claim documents out of the result.
	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"username": username,
			"password": map[string]interface{}{"$exists": true},
		},
		"limit": 1,
	}

	rows := db.Find(ctx, query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query user by username: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ErrNotFound
	}

	var user domain.User
	if err := rows.ScanDoc(&user); err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	return &user, nil
}

func (r *userRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
