package chat

import (
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPGStoreSaveUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	messages := []Message{{Text: "hello", User: "alice", Timestamp: "12:00:00"}}
	expected, _ := json.Marshal(messages)

	mock.ExpectExec("INSERT INTO chat_history").
		WithArgs(expected).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewPGStore(db).Save(messages))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStoreSaveNilHistoryWritesEmptyArray(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO chat_history").
		WithArgs([]byte("[]")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewPGStore(db).Save(nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStoreLoad(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	stored := `[{"text":"hello","user":"alice","timestamp":"12:00:00"}]`
	mock.ExpectQuery("SELECT messages FROM chat_history WHERE id = 1").
		WillReturnRows(sqlmock.NewRows([]string{"messages"}).AddRow([]byte(stored)))

	messages, err := NewPGStore(db).Load()
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "hello", messages[0].Text)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStoreLoadNoSnapshot(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT messages FROM chat_history WHERE id = 1").
		WillReturnRows(sqlmock.NewRows([]string{"messages"}))

	messages, err := NewPGStore(db).Load()
	require.NoError(t, err)
	assert.Empty(t, messages)
	assert.NoError(t, mock.ExpectationsWereMet())
}
