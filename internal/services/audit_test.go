package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLAuditLogRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO moderation_actions").
		WithArgs("a1", at, "mod", ActionFlag,
			sql.NullString{String: "prayer", Valid: true},
			sql.NullString{String: "p1", Valid: true},
			sql.NullString{},
			sql.NullString{}).
		WillReturnResult(sqlmock.NewResult(1, 1))

	log := NewSQLAuditLog(db)
	err = log.Record(context.Background(), AuditAction{
		ID: "a1", CreatedAt: at, ActorID: "mod", Action: ActionFlag,
		ContentType: "prayer", ContentID: "p1",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLAuditLogRecordAssignsID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO moderation_actions").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "admin", ActionSuspendUser,
			sql.NullString{}, sql.NullString{},
			sql.NullString{String: "u1", Valid: true},
			sql.NullString{String: "spam", Valid: true}).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = NewSQLAuditLog(db).Record(context.Background(), AuditAction{
		ActorID: "admin", Action: ActionSuspendUser, TargetID: "u1", Reason: "spam",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLAuditLogRecordError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO moderation_actions").WillReturnError(errors.New("connection reset"))

	err = NewSQLAuditLog(db).Record(context.Background(), AuditAction{ActorID: "m", Action: ActionUnflag})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audit insert")
}

func TestSQLAuditLogRecent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "created_at", "actor_id", "action", "content_type", "content_id", "target_id", "reason"}).
		AddRow("a2", at.Add(time.Minute), "admin", ActionSuspendUser, "", "", "u1", "spam").
		AddRow("a1", at, "mod", ActionFlag, "prayer", "p1", "", "")
	mock.ExpectQuery("SELECT (.+) FROM moderation_actions").WithArgs(10).WillReturnRows(rows)

	got, err := NewSQLAuditLog(db).Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ActionSuspendUser, got[0].Action)
	assert.Equal(t, "u1", got[0].TargetID)
	assert.Equal(t, "prayer", got[1].ContentType)
	assert.NoError(t, mock.ExpectationsWereMet())
}
