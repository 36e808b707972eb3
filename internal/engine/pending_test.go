package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/panelengine/internal/model"
)

func domainPhase(t *testing.T) Phase {
	t.Helper()
	for _, ph := range Phases() {
		if ph.Label == "domains" {
			return ph
		}
	}
	t.Fatal("domains phase missing")
	return Phase{}
}

func TestPendingRows_ReturnsTasksInOrder(t *testing.T) {
	db := &mockDB{}
	ctx := context.Background()
	ph := domainPhase(t)

	db.On("Query", ctx, ph.Pending, []any(nil)).Return(taskRows(
		model.TaskRow{ID: "d1", Name: "a.example", Status: model.StatusToAdd},
		model.TaskRow{ID: "d2", Name: "b.example", Status: model.StatusToDelete},
	), nil)

	tasks, err := pendingRows(ctx, db, ph)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "d1", tasks[0].ID)
	assert.Equal(t, model.StatusToAdd, tasks[0].Status)
	assert.Equal(t, "b.example", tasks[1].Name)
}

func TestPendingRows_EmptyIsNotAnError(t *testing.T) {
	db := &mockDB{}
	ctx := context.Background()
	ph := domainPhase(t)

	db.On("Query", ctx, ph.Pending, []any(nil)).Return(taskRows(), nil)

	tasks, err := pendingRows(ctx, db, ph)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestPendingRows_QueryErrorIsCategoryLevel(t *testing.T) {
	db := &mockDB{}
	ctx := context.Background()
	ph := domainPhase(t)

	db.On("Query", ctx, ph.Pending, []any(nil)).Return(nil, errors.New("relation missing"))

	_, err := pendingRows(ctx, db, ph)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query pending domains")
}
