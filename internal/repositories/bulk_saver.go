package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BulkRecord is a row that BulkSaver can write. ColumnValues must line up
// with the columns the saver was created with, id excluded, and carry the
// timestamps the record would have after Touch(now) without setting them.
type BulkRecord interface {
	GetID() string
	SetID(id string)
	Touch(now time.Time)
	ColumnValues(now time.Time) []interface{}
}

// BulkPersister writes a batch of records in one call
type BulkPersister[T BulkRecord] interface {
	BulkSave(records []T) error
}

// BulkSaver is the shared batch writer for any table whose rows are keyed
// by a TEXT id. Records without an ID are inserted with a fresh UUID, the
// rest are updated in place. The whole batch commits or rolls back together.
type BulkSaver[T BulkRecord] struct {
	db      *sql.DB
	table   string
	columns []string
}

func NewBulkSaver[T BulkRecord](db *sql.DB, table string, columns []string) *BulkSaver[T] {
	return &BulkSaver[T]{db: db, table: table, columns: columns}
}

// BulkSave inserts new records and updates persisted ones. IDs and
// timestamps are written back to the records only after the transaction
// commits, so a failed batch leaves them untouched.
func (s *BulkSaver[T]) BulkSave(records []T) error {
	if len(records) == 0 {
		return nil
	}

	var inserts, updates []T
	for _, record := range records {
		if record.GetID() == "" {
			inserts = append(inserts, record)
		} else {
			updates = append(updates, record)
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	newIDs := make([]string, len(inserts))

	if len(inserts) > 0 {
		stmt, err := tx.Prepare(s.insertQuery())
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, record := range inserts {
			newIDs[i] = uuid.New().String()
			args := append([]interface{}{newIDs[i]}, record.ColumnValues(now)...)
			if _, err := stmt.Exec(args...); err != nil {
				return fmt.Errorf("failed to insert into %s: %w", s.table, err)
			}
		}
	}

	if len(updates) > 0 {
		stmt, err := tx.Prepare(s.updateQuery())
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, record := range updates {
			args := append(record.ColumnValues(now), record.GetID())
			if _, err := stmt.Exec(args...); err != nil {
				return fmt.Errorf("failed to update %s %s: %w", s.table, record.GetID(), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	for i, record := range inserts {
		record.SetID(newIDs[i])
		record.Touch(now)
	}
	for _, record := range updates {
		record.Touch(now)
	}

	return nil
}

func (s *BulkSaver[T]) insertQuery() string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(s.columns)+1), ", ")
	return fmt.Sprintf("INSERT INTO %s (id, %s) VALUES (%s)",
		s.table, strings.Join(s.columns, ", "), placeholders)
}

func (s *BulkSaver[T]) updateQuery() string {
	assignments := make([]string, len(s.columns))
	for i, column := range s.columns {
		assignments[i] = column + " = ?"
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", s.table, strings.Join(assignments, ", "))
}
