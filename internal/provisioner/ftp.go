package provisioner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/bcrypt"

	"github.com/edvin/panelengine/internal/model"
)

// FtpUserHandler provisions FTP accounts: the home directory inside the
// owning domain's web space and the credential hash the FTP server
// authenticates against.
type FtpUserHandler struct {
	deps Deps
}

func NewFtpUserHandler(deps Deps) *FtpUserHandler {
	return &FtpUserHandler{deps: deps}
}

func (h *FtpUserHandler) Process(ctx context.Context, task model.TaskRow) error {
	switch task.Status {
	case model.StatusToDelete, model.StatusToDisable, model.StatusToEnable, model.StatusToRestore:
		// The FTP server consults the row status; nothing on disk to change.
		return nil
	}

	var (
		staged     string
		homeDir    string
		userName   string
		domainName string
	)
	err := h.deps.DB.QueryRow(ctx,
		`SELECT f.password, f.home_dir, u.name, d.name FROM ftp_users f
		 JOIN domains d ON d.id = f.domain_id
		 JOIN users u ON u.id = d.user_id
		 WHERE f.id = $1`,
		task.ID,
	).Scan(&staged, &homeDir, &userName, &domainName)
	if err != nil {
		return fmt.Errorf("get ftp user %s: %w", task.ID, err)
	}

	if homeDir == "" {
		homeDir = filepath.Join(h.deps.WebRoot, userName, domainName)
	}
	if err := os.MkdirAll(homeDir, 0o751); err != nil {
		return fmt.Errorf("create ftp home %s: %w", homeDir, err)
	}

	if staged == "" {
		_, err = h.deps.DB.Exec(ctx,
			"UPDATE ftp_users SET home_dir = $1 WHERE id = $2", homeDir, task.ID)
		if err != nil {
			return fmt.Errorf("store ftp home: %w", err)
		}
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(staged), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash ftp password: %w", err)
	}
	_, err = h.deps.DB.Exec(ctx,
		"UPDATE ftp_users SET password_hash = $1, password = '', home_dir = $2 WHERE id = $3",
		string(hash), homeDir, task.ID,
	)
	if err != nil {
		return fmt.Errorf("store ftp password hash: %w", err)
	}
	return nil
}
