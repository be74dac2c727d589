package repository

import (
	"context"
	"fmt"

	"github.com/go-kivik/kivik/v4"
)

// EnsureDatabase creates the database if it does not exist and installs the
// Mango indexes the repositories query against: username for the uniqueness
// probe on registration, created_at for newest-first note listings.
func EnsureDatabase(ctx context.Context, client *kivik.Client, dbName string) error {
	exists, err := client.DBExists(ctx, dbName)
	if err != nil {
		return fmt.Errorf("failed to check database existence: %w", err)
	}

	if !exists {
		if err := client.CreateDB(ctx, dbName); err != nil {
			return fmt.Errorf("failed to create database: %w", err)
		}
	}

	db := client.DB(dbName)

	indexes := []struct {
		name   string
		fields []string
	}{
		{"username-idx", []string{"username"}},
		{"created-at-idx", []string{"created_at"}},
		{"user-id-idx", []string{"user_id"}},
	}

	for _, idx := range indexes {
		index := map[string]interface{}{
			"fields": idx.fields,
		}
		if err := db.CreateIndex(ctx, "", idx.name, index); err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
