package memory

import (
	"database/sql"
	"errors"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/will-hwang/ml-commons/backend/qa"
	"github.com/will-hwang/ml-commons/backend/task"
)

var ErrAlreadyExists = task.ErrAlreadyExists

func IsNotFound(err error) bool {
	return errors.Is(err, task.ErrNotFound) || errors.Is(err, qa.ErrConversationNotFound)
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
