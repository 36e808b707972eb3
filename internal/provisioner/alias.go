package provisioner

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/edvin/panelengine/internal/model"
)

// DomainAliasHandler serves an alias name from its own web space under the
// owning account, like the parent domain but with an independent docroot.
type DomainAliasHandler struct {
	deps Deps
}

func NewDomainAliasHandler(deps Deps) *DomainAliasHandler {
	return &DomainAliasHandler{deps: deps}
}

func (h *DomainAliasHandler) Process(ctx context.Context, task model.TaskRow) error {
	var (
		userName string
		php      bool
	)
	err := h.deps.DB.QueryRow(ctx,
		`SELECT u.name, d.php FROM domain_aliases a
		 JOIN domains d ON d.id = a.domain_id
		 JOIN users u ON u.id = d.user_id
		 WHERE a.id = $1`,
		task.ID,
	).Scan(&userName, &php)
	if err != nil {
		return fmt.Errorf("get domain alias %s: %w", task.ID, err)
	}

	docroot := filepath.Join(h.deps.WebRoot, userName, task.Name, "htdocs")
	return h.deps.applySite(task.Name, docroot, php, task.Status)
}

// AliasSubdomainHandler provisions a subdomain of a domain alias.
type AliasSubdomainHandler struct {
	deps Deps
}

func NewAliasSubdomainHandler(deps Deps) *AliasSubdomainHandler {
	return &AliasSubdomainHandler{deps: deps}
}

func (h *AliasSubdomainHandler) Process(ctx context.Context, task model.TaskRow) error {
	var (
		userName  string
		aliasName string
		php       bool
	)
	err := h.deps.DB.QueryRow(ctx,
		`SELECT u.name, a.name, d.php FROM alias_subdomains s
		 JOIN domain_aliases a ON a.id = s.alias_id
		 JOIN domains d ON d.id = a.domain_id
		 JOIN users u ON u.id = d.user_id
		 WHERE s.id = $1`,
		task.ID,
	).Scan(&userName, &aliasName, &php)
	if err != nil {
		return fmt.Errorf("get alias subdomain %s: %w", task.ID, err)
	}

	fqdn := task.Name + "." + aliasName
	docroot := filepath.Join(h.deps.WebRoot, userName, aliasName, "subdomains", task.Name, "htdocs")
	return h.deps.applySite(fqdn, docroot, php, task.Status)
}
