package engine

import (
	"context"
	"fmt"

	"github.com/edvin/panelengine/internal/model"
)

// writeOutcome persists the result of one processed row: exactly one write.
// Success on a delete removes the row; success on a disable lands on
// 'disabled'; every other success lands on 'ok' and clears last_error.
// Failure records the handler error without touching the closed status set
// beyond 'error'. The write happens before the next row is dispatched, so a
// crash mid-run leaves already-processed rows final and untouched rows
// pending.
func writeOutcome(ctx context.Context, db DB, ph Phase, task model.TaskRow, procErr error) error {
	if procErr != nil {
		_, err := db.Exec(ctx,
			`UPDATE `+ph.Table+` SET status = 'error', last_error = $1, updated_at = now() WHERE id = $2`,
			procErr.Error(), task.ID,
		)
		if err != nil {
			return fmt.Errorf("record %s failure for %s: %w", ph.Label, task.ID, err)
		}
		return nil
	}

	switch task.Status {
	case model.StatusToDelete:
		_, err := db.Exec(ctx, `DELETE FROM `+ph.Table+` WHERE id = $1`, task.ID)
		if err != nil {
			return fmt.Errorf("delete %s row %s: %w", ph.Label, task.ID, err)
		}
	case model.StatusToDisable:
		_, err := db.Exec(ctx,
			`UPDATE `+ph.Table+` SET status = 'disabled', last_error = NULL, updated_at = now() WHERE id = $1`,
			task.ID,
		)
		if err != nil {
			return fmt.Errorf("disable %s row %s: %w", ph.Label, task.ID, err)
		}
	default:
		_, err := db.Exec(ctx,
			`UPDATE `+ph.Table+` SET status = 'ok', last_error = NULL, updated_at = now() WHERE id = $1`,
			task.ID,
		)
		if err != nil {
			return fmt.Errorf("finalize %s row %s: %w", ph.Label, task.ID, err)
		}
	}
	return nil
}
