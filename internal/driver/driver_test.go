package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"silica/internal/target"
)

func TestCompileMergesFilesIntoOneNamespace(t *testing.T) {
	result := Compile(target.EVM,
		Input{Path: "token.sil", Text: `contract Token {
    function balance() public view returns (uint256) { return 1; }
}`},
		Input{Path: "vault.sil", Text: `contract Vault {
    function probe(Token token) public returns (uint256) {
        return token.balance();
    }
}`},
	)
	require.True(t, result.Ok(), "cross-file references resolve: %v", result.Bag.Items())
	require.Len(t, result.Units, 2)
	assert.NotNil(t, result.Namespace.ContractByName("Token"))
	assert.NotNil(t, result.Namespace.ContractByName("Vault"))
}

func TestCompileKeepsDiagnosticsPerFile(t *testing.T) {
	result := Compile(target.EVM,
		Input{Path: "good.sil", Text: "contract Good { }"},
		Input{Path: "bad.sil", Text: "contract Bad { function f() public { return 1 }"},
	)
	assert.False(t, result.Ok())

	files := result.Files.Files()
	require.Len(t, files, 2)
	for _, d := range result.Bag.Items() {
		assert.Equal(t, "bad.sil", result.Files.File(d.Primary.File).Path)
	}
}

func TestReadInputsPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.sil")
	second := filepath.Join(dir, "b.sil")
	require.NoError(t, os.WriteFile(first, []byte("contract A { }"), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("contract B { }"), 0o644))

	inputs, err := ReadInputs([]string{second, first})
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	assert.Equal(t, second, inputs[0].Path)
	assert.Equal(t, "contract B { }", inputs[0].Text)
}

func TestReadInputsReportsMissingFile(t *testing.T) {
	_, err := ReadInputs([]string{filepath.Join(t.TempDir(), "missing.sil")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.sil")
}
