package provisioner

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/edvin/panelengine/internal/model"
)

// DomainHandler provisions the web space and virtual host for a domain.
type DomainHandler struct {
	deps Deps
}

func NewDomainHandler(deps Deps) *DomainHandler {
	return &DomainHandler{deps: deps}
}

func (h *DomainHandler) Process(ctx context.Context, task model.TaskRow) error {
	var (
		userName string
		php      bool
	)
	err := h.deps.DB.QueryRow(ctx,
		`SELECT u.name, d.php FROM domains d JOIN users u ON u.id = d.user_id WHERE d.id = $1`,
		task.ID,
	).Scan(&userName, &php)
	if err != nil {
		return fmt.Errorf("get domain %s: %w", task.ID, err)
	}

	docroot := filepath.Join(h.deps.WebRoot, userName, task.Name, "htdocs")
	return h.deps.applySite(task.Name, docroot, php, task.Status)
}

// SubdomainHandler provisions a subdomain under its parent domain's web
// space.
type SubdomainHandler struct {
	deps Deps
}

func NewSubdomainHandler(deps Deps) *SubdomainHandler {
	return &SubdomainHandler{deps: deps}
}

func (h *SubdomainHandler) Process(ctx context.Context, task model.TaskRow) error {
	var (
		userName   string
		domainName string
		php        bool
	)
	err := h.deps.DB.QueryRow(ctx,
		`SELECT u.name, d.name, d.php FROM subdomains s
		 JOIN domains d ON d.id = s.domain_id
		 JOIN users u ON u.id = d.user_id
		 WHERE s.id = $1`,
		task.ID,
	).Scan(&userName, &domainName, &php)
	if err != nil {
		return fmt.Errorf("get subdomain %s: %w", task.ID, err)
	}

	fqdn := task.Name + "." + domainName
	docroot := filepath.Join(h.deps.WebRoot, userName, domainName, "subdomains", task.Name, "htdocs")
	return h.deps.applySite(fqdn, docroot, php, task.Status)
}
