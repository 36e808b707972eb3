package provisioner

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/edvin/panelengine/internal/model"
)

var vhostTemplate = template.Must(template.New("vhost").Parse(`# Managed by panelengine. Manual changes will be overwritten.
<VirtualHost *:80>
    ServerName {{.Name}}
    DocumentRoot {{.DocRoot}}
{{- if .Suspended}}
    RedirectMatch 403 ^/(?!\.well-known/).*
{{- end}}
{{- if .PHP}}
    <FilesMatch "\.php$">
        SetHandler "proxy:unix:/run/php/{{.Name}}.sock|fcgi://localhost"
    </FilesMatch>
{{- end}}
    ErrorLog /var/log/panelengine/{{.Name}}-error.log
    CustomLog /var/log/panelengine/{{.Name}}-access.log combined
</VirtualHost>
`))

type vhostData struct {
	Name      string
	DocRoot   string
	PHP       bool
	Suspended bool
}

// siteManifest is the sidecar written next to each rendered vhost, consumed
// by backup and support tooling.
type siteManifest struct {
	Name      string `yaml:"name"`
	DocRoot   string `yaml:"doc_root"`
	PHP       bool   `yaml:"php"`
	Suspended bool   `yaml:"suspended"`
}

// applySite brings the on-disk state for one site (domain, subdomain or
// alias) in line with the requested transition: rendered vhost config, YAML
// manifest and document root.
func (d Deps) applySite(fqdn, docroot string, php bool, status string) error {
	confPath := filepath.Join(d.VhostConfDir, fqdn+".conf")
	manifestPath := filepath.Join(d.VhostConfDir, fqdn+".yaml")

	if status == model.StatusToDelete {
		for _, p := range []string{confPath, manifestPath} {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("remove %s: %w", p, err)
			}
		}
		if err := os.RemoveAll(docroot); err != nil {
			return fmt.Errorf("remove docroot %s: %w", docroot, err)
		}
		return nil
	}

	suspended := status == model.StatusToDisable

	if err := os.MkdirAll(docroot, 0o755); err != nil {
		return fmt.Errorf("create docroot %s: %w", docroot, err)
	}
	if err := os.MkdirAll(d.VhostConfDir, 0o755); err != nil {
		return fmt.Errorf("create vhost conf dir: %w", err)
	}

	var buf bytes.Buffer
	if err := vhostTemplate.Execute(&buf, vhostData{
		Name:      fqdn,
		DocRoot:   docroot,
		PHP:       php,
		Suspended: suspended,
	}); err != nil {
		return fmt.Errorf("render vhost %s: %w", fqdn, err)
	}
	if err := os.WriteFile(confPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write vhost %s: %w", fqdn, err)
	}

	manifest, err := yaml.Marshal(siteManifest{
		Name:      fqdn,
		DocRoot:   docroot,
		PHP:       php,
		Suspended: suspended,
	})
	if err != nil {
		return fmt.Errorf("marshal manifest %s: %w", fqdn, err)
	}
	if err := os.WriteFile(manifestPath, manifest, 0o644); err != nil {
		return fmt.Errorf("write manifest %s: %w", fqdn, err)
	}

	return nil
}
