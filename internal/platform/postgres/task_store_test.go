package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/taskapi/internal/domain"
	"github.com/phrazzld/taskapi/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func newMockStore(t *testing.T) (*PostgresTaskStore, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := NewPostgresTaskStore(db, nil)
	s.now = func() time.Time { return fixedNow }
	return s, mock, db
}

func taskRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "description", "is_completed", "created_at", "updated_at"})
}

func TestNewPostgresTaskStore_NilDBPanics(t *testing.T) {
	assert.Panics(t, func() { NewPostgresTaskStore(nil, nil) })
}

func TestPostgresTaskStore_FindAll(t *testing.T) {
	s, mock, _ := newMockStore(t)
	mock.ExpectQuery(`SELECT .+ FROM tasks ORDER BY id ASC`).
		WillReturnRows(taskRows().
			AddRow(int64(1), "A", "", false, fixedNow, fixedNow).
			AddRow(int64(2), "B", "second", true, fixedNow, fixedNow))

	tasks, err := s.FindAll(context.Background())

	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, int64(1), tasks[0].ID)
	assert.Equal(t, "B", tasks[1].Title)
	assert.True(t, tasks[1].IsCompleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskStore_FindAll_EmptyIsNotNil(t *testing.T) {
	s, mock, _ := newMockStore(t)
	mock.ExpectQuery(`SELECT .+ FROM tasks`).WillReturnRows(taskRows())

	tasks, err := s.FindAll(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestPostgresTaskStore_FindAll_QueryError(t *testing.T) {
	s, mock, _ := newMockStore(t)
	cause := errors.New("connection reset")
	mock.ExpectQuery(`SELECT .+ FROM tasks`).WillReturnError(cause)

	tasks, err := s.FindAll(context.Background())

	assert.ErrorIs(t, err, cause)
	assert.Nil(t, tasks)
}

func TestPostgresTaskStore_FindAll_ConnectionLost(t *testing.T) {
	s, mock, _ := newMockStore(t)
	mock.ExpectQuery(`SELECT .+ FROM tasks`).WillReturnError(&pgconn.PgError{Code: "08006", Message: "connection failure"})

	_, err := s.FindAll(context.Background())

	assert.ErrorIs(t, err, store.ErrConnection)
	var storeErr *store.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "task", storeErr.Entity)
	assert.Equal(t, "find_all", storeErr.Operation)
}

func TestPostgresTaskStore_FindByID(t *testing.T) {
	s, mock, _ := newMockStore(t)
	mock.ExpectQuery(`SELECT .+ FROM tasks WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(taskRows().AddRow(int64(7), "Write report", "q1", false, fixedNow, fixedNow))

	task, err := s.FindByID(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, int64(7), task.ID)
	assert.Equal(t, "Write report", task.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskStore_FindByID_NotFound(t *testing.T) {
	s, mock, _ := newMockStore(t)
	mock.ExpectQuery(`SELECT .+ FROM tasks WHERE id = \$1`).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	task, err := s.FindByID(context.Background(), 99)

	assert.Nil(t, task)
	assert.Equal(t, store.ErrTaskNotFound, err)
}

func TestPostgresTaskStore_Insert(t *testing.T) {
	s, mock, _ := newMockStore(t)
	mock.ExpectQuery(`INSERT INTO tasks`).
		WithArgs("Buy milk", "2 liters", false, fixedNow, fixedNow).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(12)))

	task := &domain.Task{ID: 500, Title: "Buy milk", Description: "2 liters"}
	err := s.Insert(context.Background(), task)

	require.NoError(t, err)
	assert.Equal(t, int64(12), task.ID, "store-assigned ID replaces any client value")
	assert.Equal(t, fixedNow, task.CreatedAt)
	assert.Equal(t, fixedNow, task.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskStore_Insert_InvalidTask(t *testing.T) {
	s, mock, _ := newMockStore(t)

	err := s.Insert(context.Background(), &domain.Task{Title: "   "})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet(), "no query should be issued")
}

func TestPostgresTaskStore_MarkModified(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(mock sqlmock.Sqlmock)
		expected store.SaveOutcome
	}{
		{
			name: "row replaced",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE tasks`).
					WithArgs("New", "d", true, fixedNow, int64(5)).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			expected: store.SaveSucceeded,
		},
		{
			name: "row vanished",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE tasks`).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			expected: store.SaveNotFound,
		},
		{
			name: "database failure",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE tasks`).
					WillReturnError(errors.New("deadlock detected"))
			},
			expected: store.SaveFailed,
		},
		{
			name: "rows affected unavailable",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE tasks`).
					WillReturnResult(sqlmock.NewErrorResult(errors.New("driver error")))
			},
			expected: store.SaveFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock, _ := newMockStore(t)
			tt.setup(mock)

			result := s.MarkModified(context.Background(),
				&domain.Task{ID: 5, Title: "New", Description: "d", IsCompleted: true})

			assert.Equal(t, tt.expected, result.Outcome)
			if tt.expected == store.SaveSucceeded {
				assert.NoError(t, result.Error())
			} else {
				assert.Error(t, result.Error())
			}
			if tt.expected == store.SaveNotFound {
				assert.ErrorIs(t, result.Error(), store.ErrTaskNotFound)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresTaskStore_Remove(t *testing.T) {
	s, mock, _ := newMockStore(t)
	mock.ExpectExec(`DELETE FROM tasks WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.Remove(context.Background(), &domain.Task{ID: 3})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskStore_Remove_NotFound(t *testing.T) {
	s, mock, _ := newMockStore(t)
	mock.ExpectExec(`DELETE FROM tasks`).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Remove(context.Background(), &domain.Task{ID: 3})

	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestPostgresTaskStore_Ping(t *testing.T) {
	s, mock, _ := newMockStore(t)
	mock.ExpectQuery(`SELECT 1`).WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	assert.NoError(t, s.Ping(context.Background()))

	mock.ExpectQuery(`SELECT 1`).WillReturnError(errors.New("down"))
	assert.Error(t, s.Ping(context.Background()))
}

func TestPostgresTaskStore_WithTx(t *testing.T) {
	s, mock, db := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM tasks`).
		WithArgs(int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
		return s.WithTx(tx).Remove(ctx, &domain.Task{ID: 8})
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
