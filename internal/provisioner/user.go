package provisioner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/bcrypt"

	"github.com/edvin/panelengine/internal/model"
)

// UserHandler provisions hosting accounts: the per-user web space directory
// and the account's credential hash. The panel stages a plaintext password
// in the password column; the handler hashes it and clears the staging
// value.
type UserHandler struct {
	deps Deps
}

func NewUserHandler(deps Deps) *UserHandler {
	return &UserHandler{deps: deps}
}

func (h *UserHandler) Process(ctx context.Context, task model.TaskRow) error {
	home := filepath.Join(h.deps.WebRoot, task.Name)

	switch task.Status {
	case model.StatusToDelete:
		if err := os.RemoveAll(home); err != nil {
			return fmt.Errorf("remove user home %s: %w", home, err)
		}
		return nil
	case model.StatusToAdd, model.StatusToChange, model.StatusToChangePassword:
		if err := os.MkdirAll(home, 0o751); err != nil {
			return fmt.Errorf("create user home %s: %w", home, err)
		}
		return h.hashStagedPassword(ctx, task.ID)
	default:
		return nil
	}
}

func (h *UserHandler) hashStagedPassword(ctx context.Context, id string) error {
	var staged string
	err := h.deps.DB.QueryRow(ctx, "SELECT password FROM users WHERE id = $1", id).Scan(&staged)
	if err != nil {
		return fmt.Errorf("get staged password: %w", err)
	}
	if staged == "" {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(staged), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	_, err = h.deps.DB.Exec(ctx,
		"UPDATE users SET password_hash = $1, password = '' WHERE id = $2",
		string(hash), id,
	)
	if err != nil {
		return fmt.Errorf("store password hash: %w", err)
	}
	return nil
}
