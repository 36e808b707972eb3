package engine

import (
	"context"
	"fmt"

	"github.com/edvin/panelengine/internal/model"
)

// pendingRows executes a phase's pending-work query. An empty result means
// nothing to do; a query error is category-level and aborts the run.
func pendingRows(ctx context.Context, db DB, ph Phase) ([]model.TaskRow, error) {
	rows, err := db.Query(ctx, ph.Pending)
	if err != nil {
		return nil, fmt.Errorf("query pending %s: %w", ph.Label, err)
	}
	defer rows.Close()

	var tasks []model.TaskRow
	for rows.Next() {
		var t model.TaskRow
		if err := rows.Scan(&t.ID, &t.Name, &t.Status); err != nil {
			return nil, fmt.Errorf("scan pending %s: %w", ph.Label, err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending %s: %w", ph.Label, err)
	}

	return tasks, nil
}
