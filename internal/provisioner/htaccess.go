package provisioner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/edvin/panelengine/internal/model"
)

// The htaccess handlers maintain per-domain .htpasswd/.htgroup files and the
// .htaccess protection stanzas referencing them. Each processed row
// regenerates its domain's file from all surviving rows, so a deletion
// simply falls out of the rewrite.

type HtUserHandler struct {
	deps Deps
}

func NewHtUserHandler(deps Deps) *HtUserHandler {
	return &HtUserHandler{deps: deps}
}

func (h *HtUserHandler) Process(ctx context.Context, task model.TaskRow) error {
	domainID, domainRoot, err := htDomainRoot(ctx, h.deps, "htaccess_users", task.ID)
	if err != nil {
		return err
	}

	switch task.Status {
	case model.StatusToAdd, model.StatusToChange, model.StatusToChangePassword:
		if err := hashStagedHtPassword(ctx, h.deps, task.ID); err != nil {
			return err
		}
	}

	include := task.ID
	if task.Status == model.StatusToDelete || task.Status == model.StatusToDisable {
		include = ""
	}

	rows, err := h.deps.DB.Query(ctx,
		`SELECT name, password_hash FROM htaccess_users
		 WHERE domain_id = $1 AND (status = 'ok' OR id = $2)
		 ORDER BY name`,
		domainID, include,
	)
	if err != nil {
		return fmt.Errorf("list htaccess users: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	for rows.Next() {
		var name, hash string
		if err := rows.Scan(&name, &hash); err != nil {
			return fmt.Errorf("scan htaccess user: %w", err)
		}
		fmt.Fprintf(&b, "%s:%s\n", name, hash)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate htaccess users: %w", err)
	}

	path := filepath.Join(domainRoot, ".htpasswd")
	if err := os.WriteFile(path, []byte(b.String()), 0o640); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

type HtGroupHandler struct {
	deps Deps
}

func NewHtGroupHandler(deps Deps) *HtGroupHandler {
	return &HtGroupHandler{deps: deps}
}

func (h *HtGroupHandler) Process(ctx context.Context, task model.TaskRow) error {
	domainID, domainRoot, err := htDomainRoot(ctx, h.deps, "htaccess_groups", task.ID)
	if err != nil {
		return err
	}

	include := task.ID
	if task.Status == model.StatusToDelete || task.Status == model.StatusToDisable {
		include = ""
	}

	rows, err := h.deps.DB.Query(ctx,
		`SELECT name, members FROM htaccess_groups
		 WHERE domain_id = $1 AND (status = 'ok' OR id = $2)
		 ORDER BY name`,
		domainID, include,
	)
	if err != nil {
		return fmt.Errorf("list htaccess groups: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	for rows.Next() {
		var name, members string
		if err := rows.Scan(&name, &members); err != nil {
			return fmt.Errorf("scan htaccess group: %w", err)
		}
		fmt.Fprintf(&b, "%s: %s\n", name, strings.ReplaceAll(members, ",", " "))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate htaccess groups: %w", err)
	}

	path := filepath.Join(domainRoot, ".htgroup")
	if err := os.WriteFile(path, []byte(b.String()), 0o640); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

type HtRuleHandler struct {
	deps Deps
}

func NewHtRuleHandler(deps Deps) *HtRuleHandler {
	return &HtRuleHandler{deps: deps}
}

func (h *HtRuleHandler) Process(ctx context.Context, task model.TaskRow) error {
	var (
		rulePath string
		authName string
	)
	err := h.deps.DB.QueryRow(ctx,
		"SELECT path, auth_name FROM htaccess_rules WHERE id = $1", task.ID,
	).Scan(&rulePath, &authName)
	if err != nil {
		return fmt.Errorf("get htaccess rule %s: %w", task.ID, err)
	}

	_, domainRoot, err := htDomainRoot(ctx, h.deps, "htaccess_rules", task.ID)
	if err != nil {
		return err
	}

	target := filepath.Join(domainRoot, "htdocs", filepath.Clean("/"+rulePath), ".htaccess")

	switch task.Status {
	case model.StatusToDelete, model.StatusToDisable:
		if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", target, err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create rule dir: %w", err)
	}

	content := fmt.Sprintf(`AuthType Basic
AuthName "%s"
AuthUserFile %s
AuthGroupFile %s
Require valid-user
`, authName, filepath.Join(domainRoot, ".htpasswd"), filepath.Join(domainRoot, ".htgroup"))

	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}

// htDomainRoot resolves the owning domain's id and web space root for a row
// in one of the htaccess tables.
func htDomainRoot(ctx context.Context, deps Deps, table, id string) (string, string, error) {
	var domainID, domainName, userName string
	err := deps.DB.QueryRow(ctx,
		`SELECT d.id, d.name, u.name FROM `+table+` h
		 JOIN domains d ON d.id = h.domain_id
		 JOIN users u ON u.id = d.user_id
		 WHERE h.id = $1`,
		id,
	).Scan(&domainID, &domainName, &userName)
	if err != nil {
		return "", "", fmt.Errorf("resolve domain for %s row %s: %w", table, id, err)
	}
	return domainID, filepath.Join(deps.WebRoot, userName, domainName), nil
}

func hashStagedHtPassword(ctx context.Context, deps Deps, id string) error {
	var staged string
	err := deps.DB.QueryRow(ctx, "SELECT password FROM htaccess_users WHERE id = $1", id).Scan(&staged)
	if err != nil {
		return fmt.Errorf("get staged password: %w", err)
	}
	if staged == "" {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(staged), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash htaccess password: %w", err)
	}
	_, err = deps.DB.Exec(ctx,
		"UPDATE htaccess_users SET password_hash = $1, password = '' WHERE id = $2",
		string(hash), id,
	)
	if err != nil {
		return fmt.Errorf("store htaccess password hash: %w", err)
	}
	return nil
}
