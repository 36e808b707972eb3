package provisioner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/bcrypt"

	"github.com/edvin/panelengine/internal/model"
)

// MailAccountHandler provisions mailboxes: the maildir under the owning
// domain and the credential hash.
type MailAccountHandler struct {
	deps Deps
}

func NewMailAccountHandler(deps Deps) *MailAccountHandler {
	return &MailAccountHandler{deps: deps}
}

func (h *MailAccountHandler) Process(ctx context.Context, task model.TaskRow) error {
	var domainName string
	err := h.deps.DB.QueryRow(ctx,
		`SELECT d.name FROM mail_accounts m JOIN domains d ON d.id = m.domain_id WHERE m.id = $1`,
		task.ID,
	).Scan(&domainName)
	if err != nil {
		return fmt.Errorf("get mail account %s: %w", task.ID, err)
	}

	maildir := filepath.Join(h.deps.MailRoot, domainName, task.Name)

	switch task.Status {
	case model.StatusToDelete:
		if err := os.RemoveAll(maildir); err != nil {
			return fmt.Errorf("remove maildir %s: %w", maildir, err)
		}
		return nil
	case model.StatusToDisable, model.StatusToEnable, model.StatusToRestore:
		// Delivery and IMAP access consult the row status.
		return nil
	}

	for _, sub := range []string{"cur", "new", "tmp"} {
		if err := os.MkdirAll(filepath.Join(maildir, sub), 0o700); err != nil {
			return fmt.Errorf("create maildir %s: %w", maildir, err)
		}
	}

	return h.hashStagedPassword(ctx, task.ID)
}

func (h *MailAccountHandler) hashStagedPassword(ctx context.Context, id string) error {
	var staged string
	err := h.deps.DB.QueryRow(ctx, "SELECT password FROM mail_accounts WHERE id = $1", id).Scan(&staged)
	if err != nil {
		return fmt.Errorf("get staged password: %w", err)
	}
	if staged == "" {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(staged), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash mail password: %w", err)
	}
	_, err = h.deps.DB.Exec(ctx,
		"UPDATE mail_accounts SET password_hash = $1, password = '' WHERE id = $2",
		string(hash), id,
	)
	if err != nil {
		return fmt.Errorf("store mail password hash: %w", err)
	}
	return nil
}
