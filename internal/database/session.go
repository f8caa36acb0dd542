package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrSessionClosed is returned when a finished session is used again.
var ErrSessionClosed = errors.New("database session already closed")

// Session is a unit of work scoped to one request. All statements run in a
// single transaction that is committed explicitly or rolled back by Close.
type Session struct {
	tx   *gorm.DB
	done bool
}

// NewSession begins a transaction bound to ctx.
func (db *Database) NewSession(ctx context.Context) (*Session, error) {
	tx := db.ORM.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin session: %w", tx.Error)
	}

	return &Session{tx: tx}, nil
}

// DB returns the transaction handle for queries.
func (s *Session) DB() *gorm.DB {
	return s.tx
}

// Commit makes the session's writes durable. Deferred constraint failures
// surface here.
func (s *Session) Commit() error {
	if s.done {
		return ErrSessionClosed
	}
	s.done = true

	if err := s.tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	return nil
}

// Rollback discards the session's writes.
func (s *Session) Rollback() error {
	if s.done {
		return ErrSessionClosed
	}
	s.done = true

	if err := s.tx.Rollback().Error; err != nil {
		return fmt.Errorf("failed to roll back session: %w", err)
	}
	return nil
}

// Close rolls back anything not committed. Safe to call more than once.
func (s *Session) Close() error {
	if s == nil || s.done {
		return nil
	}
	return s.Rollback()
}

// Done reports whether the session was committed or rolled back.
func (s *Session) Done() bool {
	return s.done
}
