package provisioner

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"path/filepath"

	"github.com/edvin/panelengine/internal/model"
)

// CertificateHandler validates an uploaded certificate/key pair and installs
// it under the certificate directory where the web and mail servers pick it
// up.
type CertificateHandler struct {
	deps Deps
}

func NewCertificateHandler(deps Deps) (*CertificateHandler, error) {
	if err := os.MkdirAll(deps.CertDir, 0o750); err != nil {
		return nil, fmt.Errorf("create cert dir: %w", err)
	}
	return &CertificateHandler{deps: deps}, nil
}

func (h *CertificateHandler) Process(ctx context.Context, task model.TaskRow) error {
	certPath := filepath.Join(h.deps.CertDir, task.Name+".pem")
	keyPath := filepath.Join(h.deps.CertDir, task.Name+".key")

	switch task.Status {
	case model.StatusToDelete, model.StatusToDisable:
		for _, p := range []string{certPath, keyPath} {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("remove %s: %w", p, err)
			}
		}
		return nil
	}

	var certPEM, keyPEM, caBundle string
	err := h.deps.DB.QueryRow(ctx,
		"SELECT certificate, private_key, ca_bundle FROM ssl_certificates WHERE id = $1",
		task.ID,
	).Scan(&certPEM, &keyPEM, &caBundle)
	if err != nil {
		return fmt.Errorf("get certificate %s: %w", task.ID, err)
	}

	// Reject mismatched pairs before anything touches the filesystem.
	if _, err := tls.X509KeyPair([]byte(certPEM), []byte(keyPEM)); err != nil {
		return fmt.Errorf("validate certificate %s: %w", task.Name, err)
	}

	chain := certPEM
	if caBundle != "" {
		chain = certPEM + "\n" + caBundle
	}
	if err := os.WriteFile(certPath, []byte(chain), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", certPath, err)
	}
	if err := os.WriteFile(keyPath, []byte(keyPEM), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", keyPath, err)
	}
	return nil
}
