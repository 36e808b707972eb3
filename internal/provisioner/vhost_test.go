package provisioner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/edvin/panelengine/internal/model"
)

func testDeps(t *testing.T) Deps {
	t.Helper()
	root := t.TempDir()
	return Deps{
		WebRoot:      filepath.Join(root, "www"),
		VhostConfDir: filepath.Join(root, "vhosts"),
		MailRoot:     filepath.Join(root, "mail"),
		CertDir:      filepath.Join(root, "certs"),
		PluginDir:    filepath.Join(root, "plugins"),
	}
}

func TestApplySite_Add(t *testing.T) {
	deps := testDeps(t)
	docroot := filepath.Join(deps.WebRoot, "alice", "example.com", "htdocs")

	require.NoError(t, deps.applySite("example.com", docroot, true, model.StatusToAdd))

	assert.DirExists(t, docroot)

	conf, err := os.ReadFile(filepath.Join(deps.VhostConfDir, "example.com.conf"))
	require.NoError(t, err)
	assert.Contains(t, string(conf), "ServerName example.com")
	assert.Contains(t, string(conf), "DocumentRoot "+docroot)
	assert.Contains(t, string(conf), "SetHandler")
	assert.NotContains(t, string(conf), "RedirectMatch 403")

	raw, err := os.ReadFile(filepath.Join(deps.VhostConfDir, "example.com.yaml"))
	require.NoError(t, err)
	var m siteManifest
	require.NoError(t, yaml.Unmarshal(raw, &m))
	assert.Equal(t, "example.com", m.Name)
	assert.Equal(t, docroot, m.DocRoot)
	assert.True(t, m.PHP)
	assert.False(t, m.Suspended)
}

func TestApplySite_DisableSuspends(t *testing.T) {
	deps := testDeps(t)
	docroot := filepath.Join(deps.WebRoot, "alice", "example.com", "htdocs")

	require.NoError(t, deps.applySite("example.com", docroot, false, model.StatusToDisable))

	conf, err := os.ReadFile(filepath.Join(deps.VhostConfDir, "example.com.conf"))
	require.NoError(t, err)
	assert.Contains(t, string(conf), "RedirectMatch 403")
	assert.NotContains(t, string(conf), "SetHandler")
}

func TestApplySite_DeleteRemovesEverything(t *testing.T) {
	deps := testDeps(t)
	docroot := filepath.Join(deps.WebRoot, "alice", "example.com", "htdocs")

	require.NoError(t, deps.applySite("example.com", docroot, true, model.StatusToAdd))
	require.NoError(t, deps.applySite("example.com", docroot, true, model.StatusToDelete))

	assert.NoFileExists(t, filepath.Join(deps.VhostConfDir, "example.com.conf"))
	assert.NoFileExists(t, filepath.Join(deps.VhostConfDir, "example.com.yaml"))
	assert.NoDirExists(t, docroot)
}

func TestApplySite_DeleteIsIdempotent(t *testing.T) {
	deps := testDeps(t)
	docroot := filepath.Join(deps.WebRoot, "alice", "gone.example", "htdocs")

	require.NoError(t, deps.applySite("gone.example", docroot, false, model.StatusToDelete))
}
