package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"silica/internal/target"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadWalksUpward(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "silica.toml"), `[package]
name = "token"

[build]
target = "wasm"
`)
	nested := filepath.Join(root, "contracts", "deep")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	m, ok, err := Load(nested)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "token", m.Config.Package.Name)
	assert.Equal(t, root, m.Root)
	assert.Equal(t, target.Wasm, m.Target())
}

func TestLoadReportsAbsence(t *testing.T) {
	_, ok, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidationErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"missing package", `[build]
target = "evm"
`, "missing [package]"},
		{"missing name", `[package]
version = "1.0"
`, "missing [package].name"},
		{"bad target", `[package]
name = "x"

[build]
target = "tron"
`, "unknown [build].target"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "silica.toml")
			writeFile(t, path, tc.content)
			_, err := LoadFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestTargetDefaultsToEVM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "silica.toml")
	writeFile(t, path, `[package]
name = "minimal"
`)
	m, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, target.EVM, m.Target())
	assert.Equal(t, filepath.Join(m.Root, "out"), m.OutDir())
}

func TestSourceFilesScansRootByDefault(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "silica.toml"), `[package]
name = "scan"
`)
	writeFile(t, filepath.Join(root, "b.sil"), "contract B { }")
	writeFile(t, filepath.Join(root, "a.sil"), "contract A { }")
	writeFile(t, filepath.Join(root, "contracts", "c.sil"), "contract C { }")
	writeFile(t, filepath.Join(root, "out", "stale.sil"), "contract Stale { }")
	writeFile(t, filepath.Join(root, "README.md"), "docs")

	m, err := LoadFile(filepath.Join(root, "silica.toml"))
	require.NoError(t, err)
	files, err := m.SourceFiles()
	require.NoError(t, err)

	want := []string{
		filepath.Join(root, "a.sil"),
		filepath.Join(root, "b.sil"),
		filepath.Join(root, "contracts", "c.sil"),
	}
	assert.Equal(t, want, files)
}

func TestSourceFilesKeepListedOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "silica.toml"), `[package]
name = "ordered"

[build]
sources = ["z.sil", "a.sil"]
`)
	writeFile(t, filepath.Join(root, "a.sil"), "contract A { }")
	writeFile(t, filepath.Join(root, "z.sil"), "contract Z { }")

	m, err := LoadFile(filepath.Join(root, "silica.toml"))
	require.NoError(t, err)
	files, err := m.SourceFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "z.sil"),
		filepath.Join(root, "a.sil"),
	}, files)
}

func TestSourceFilesRejectsWrongExtension(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "silica.toml"), `[package]
name = "bad"

[build]
sources = ["main.sol"]
`)
	writeFile(t, filepath.Join(root, "main.sol"), "contract X { }")

	m, err := LoadFile(filepath.Join(root, "silica.toml"))
	require.NoError(t, err)
	_, err = m.SourceFiles()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a .sil file")
}
