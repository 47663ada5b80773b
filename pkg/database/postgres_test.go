package database

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/wonny/mcrisk/pkg/config"
)

// openTestDB DATABASE_URL이 있을 때만 통합 테스트 실행
func openTestDB(t *testing.T) *DB {
	t.Helper()
	if testing.Short() || os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	db, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(db.Close)
	return db
}

func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, err := db.HealthCheck(ctx)
	if err != nil {
		t.Fatalf("HealthCheck failed: %v", err)
	}

	if !status.Healthy {
		t.Error("Expected database to be healthy")
	}

	if status.Stats.MaxConns == 0 {
		t.Error("Expected MaxConns to be greater than 0")
	}
}

func TestNewWithInvalidURL(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			URL:             "invalid://url",
			MaxConns:        25,
			MinConns:        5,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 30 * time.Minute,
		},
	}

	_, err := New(context.Background(), cfg)
	if err == nil {
		t.Error("Expected error with invalid database URL, got nil")
	}
}

func TestNewWithoutURL(t *testing.T) {
	_, err := New(context.Background(), &config.Config{})
	if !errors.Is(err, ErrNoDatabaseURL) {
		t.Errorf("Expected ErrNoDatabaseURL, got %v", err)
	}
}

func TestCloseNil(t *testing.T) {
	// Close should not panic on nil receiver or empty pool
	var db *DB
	db.Close()
	(&DB{}).Close()
}
