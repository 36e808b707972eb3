package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/panelengine/internal/model"
)

var testPhase = Phase{Kind: model.KindDomain, Label: "domains", Table: "domains"}

func sqlContaining(substrs ...string) any {
	return mock.MatchedBy(func(sql string) bool {
		for _, s := range substrs {
			if !strings.Contains(sql, s) {
				return false
			}
		}
		return true
	})
}

func TestWriteOutcome_SuccessOnAdd(t *testing.T) {
	db := &mockDB{}
	ctx := context.Background()
	task := model.TaskRow{ID: "d1", Name: "example.com", Status: model.StatusToAdd}

	db.On("Exec", ctx, sqlContaining("UPDATE domains", "status = 'ok'", "last_error = NULL"), []any{"d1"}).
		Return(pgconn.CommandTag{}, nil)

	require.NoError(t, writeOutcome(ctx, db, testPhase, task, nil))
	db.AssertExpectations(t)
}

func TestWriteOutcome_SuccessOnEnableAndRestore(t *testing.T) {
	db := &mockDB{}
	ctx := context.Background()

	db.On("Exec", ctx, sqlContaining("UPDATE domains", "status = 'ok'"), []any{"d1"}).
		Return(pgconn.CommandTag{}, nil).Twice()

	require.NoError(t, writeOutcome(ctx, db, testPhase, model.TaskRow{ID: "d1", Status: model.StatusToEnable}, nil))
	require.NoError(t, writeOutcome(ctx, db, testPhase, model.TaskRow{ID: "d1", Status: model.StatusToRestore}, nil))
	db.AssertExpectations(t)
}

func TestWriteOutcome_SuccessOnDisable(t *testing.T) {
	db := &mockDB{}
	ctx := context.Background()
	task := model.TaskRow{ID: "d2", Name: "example.org", Status: model.StatusToDisable}

	db.On("Exec", ctx, sqlContaining("UPDATE domains", "status = 'disabled'"), []any{"d2"}).
		Return(pgconn.CommandTag{}, nil)

	require.NoError(t, writeOutcome(ctx, db, testPhase, task, nil))
	db.AssertExpectations(t)
}

func TestWriteOutcome_SuccessOnDeleteRemovesRow(t *testing.T) {
	db := &mockDB{}
	ctx := context.Background()
	task := model.TaskRow{ID: "d3", Name: "old.example", Status: model.StatusToDelete}

	db.On("Exec", ctx, sqlContaining("DELETE FROM domains"), []any{"d3"}).
		Return(pgconn.CommandTag{}, nil)

	require.NoError(t, writeOutcome(ctx, db, testPhase, task, nil))
	db.AssertExpectations(t)
}

func TestWriteOutcome_FailureRecordsError(t *testing.T) {
	db := &mockDB{}
	ctx := context.Background()
	task := model.TaskRow{ID: "d4", Name: "bad.example", Status: model.StatusToAdd}

	db.On("Exec", ctx, sqlContaining("UPDATE domains", "status = 'error'", "last_error = $1"),
		[]any{"render vhost failed", "d4"}).
		Return(pgconn.CommandTag{}, nil)

	require.NoError(t, writeOutcome(ctx, db, testPhase, task, errors.New("render vhost failed")))
	db.AssertExpectations(t)
}

func TestWriteOutcome_WriteErrorPropagates(t *testing.T) {
	db := &mockDB{}
	ctx := context.Background()
	task := model.TaskRow{ID: "d5", Status: model.StatusToAdd}

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("connection reset"))

	err := writeOutcome(ctx, db, testPhase, task, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "finalize domains row d5")
}
