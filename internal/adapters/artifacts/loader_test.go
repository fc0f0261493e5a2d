package artifacts

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/config"
	"github.com/trebuchet-org/sling/internal/usecase"
)

const gatewayABI = `[{"type":"constructor","inputs":[{"name":"admin","type":"address"}]}]`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func hardhatArtifact(name, source, bytecode string) string {
	return `{"_format":"hh-sol-artifact-1","contractName":"` + name + `","sourceName":"` + source +
		`","abi":` + gatewayABI + `,"bytecode":"` + bytecode + `"}`
}

func foundryArtifact(source, name, version, bytecode string) string {
	return `{"abi":` + gatewayABI + `,"bytecode":{"object":"` + bytecode + `"},` +
		`"metadata":{"compiler":{"version":"` + version + `"},"settings":{"compilationTarget":{"` + source + `":"` + name + `"}}}}`
}

type stubSelector struct {
	calls int
	pick  int
}

func (s *stubSelector) SelectContract(ctx context.Context, name string, candidates []*domain.ContractArtifact) (*domain.ContractArtifact, error) {
	s.calls++
	return candidates[s.pick], nil
}

func newLoader(root string, selector *stubSelector, nonInteractive bool) *Loader {
	cfg := &config.RuntimeConfig{ProjectRoot: root, NonInteractive: nonInteractive}
	var sel usecase.ContractSelector
	if selector != nil {
		sel = selector
	}
	return NewLoader(cfg, sel, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLoader_Hardhat(t *testing.T) {
	root := t.TempDir()
	artifactPath := filepath.Join(root, "artifacts", "contracts", "ZkMerkleMinter.sol", "ZkMerkleMinter.json")
	writeFile(t, artifactPath, hardhatArtifact("ZkMerkleMinter", "contracts/ZkMerkleMinter.sol", "0x6001600c60003960016000f300"))
	writeFile(t, filepath.Join(root, "artifacts", "contracts", "ZkMerkleMinter.sol", "ZkMerkleMinter.dbg.json"),
		`{"_format":"hh-sol-dbg-1","buildInfo":"../../build-info/abc123.json"}`)
	writeFile(t, filepath.Join(root, "artifacts", "build-info", "abc123.json"),
		`{"solcVersion":"0.8.24","solcLongVersion":"0.8.24+commit.e11b9ed9","input":{"sources":{}}}`)

	artifact, err := newLoader(root, nil, true).Load(context.Background(), "ZkMerkleMinter")
	require.NoError(t, err)

	assert.Equal(t, "ZkMerkleMinter", artifact.Name)
	assert.Equal(t, "contracts/ZkMerkleMinter.sol", artifact.SourceName)
	assert.Equal(t, "contracts/ZkMerkleMinter.sol:ZkMerkleMinter", artifact.FullName())
	assert.Equal(t, artifactPath, artifact.Path)
	assert.Equal(t, []byte{0x60, 0x01, 0x60, 0x0c, 0x60, 0x00, 0x39, 0x60, 0x01, 0x60, 0x00, 0xf3, 0x00}, artifact.Bytecode)
	assert.Len(t, artifact.ABI.Constructor.Inputs, 1)
	assert.Equal(t, "0.8.24+commit.e11b9ed9", artifact.CompilerVersion)
	assert.Equal(t, filepath.Join(root, "artifacts", "build-info", "abc123.json"), artifact.BuildInfoPath)
}

func TestLoader_Foundry(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "out", "SablierV2BatchLockup.sol", "SablierV2BatchLockup.json"),
		foundryArtifact("src/periphery/SablierV2BatchLockup.sol", "SablierV2BatchLockup", "0.8.26+commit.8a97fa7a", "0x6001"))
	writeFile(t, filepath.Join(root, "out", "build-info", "f00d.json"),
		`{"id":"f00d","source_id_to_path":{"0":"src/periphery/SablierV2BatchLockup.sol"},"input":{"sources":{"src/periphery/SablierV2BatchLockup.sol":{}}}}`)

	artifact, err := newLoader(root, nil, true).Load(context.Background(), "SablierV2BatchLockup")
	require.NoError(t, err)

	assert.Equal(t, "src/periphery/SablierV2BatchLockup.sol", artifact.SourceName)
	assert.Equal(t, "0.8.26+commit.8a97fa7a", artifact.CompilerVersion)
	assert.Equal(t, []byte{0x60, 0x01}, artifact.Bytecode)
	assert.Equal(t, filepath.Join(root, "out", "build-info", "f00d.json"), artifact.BuildInfoPath)
}

func TestLoader_NotFound(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "out", "A.sol", "A.json"), foundryArtifact("src/A.sol", "A", "0.8.26", "0x6001"))

	_, err := newLoader(root, nil, true).Load(context.Background(), "Missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)

	var notFound *domain.ArtifactNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, config.DefaultArtifactPaths, notFound.Searched)
}

func TestLoader_Ambiguous(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "out", "a", "Token.sol", "Token.json"), foundryArtifact("src/a/Token.sol", "Token", "0.8.26", "0x6001"))
	writeFile(t, filepath.Join(root, "out", "b", "Token.sol", "Token.json"), foundryArtifact("src/b/Token.sol", "Token", "0.8.26", "0x6002"))

	t.Run("non-interactive reports every match", func(t *testing.T) {
		_, err := newLoader(root, nil, true).Load(context.Background(), "Token")
		var ambiguous *domain.AmbiguousArtifactError
		require.ErrorAs(t, err, &ambiguous)
		require.Len(t, ambiguous.Matches, 2)
		assert.Equal(t, "src/a/Token.sol", ambiguous.Matches[0].SourceName)
	})

	t.Run("path qualifier disambiguates", func(t *testing.T) {
		artifact, err := newLoader(root, nil, true).Load(context.Background(), "src/b/Token.sol:Token")
		require.NoError(t, err)
		assert.Equal(t, []byte{0x60, 0x02}, artifact.Bytecode)

		artifact, err = newLoader(root, nil, true).Load(context.Background(), "a/Token.sol:Token")
		require.NoError(t, err)
		assert.Equal(t, "src/a/Token.sol", artifact.SourceName)
	})

	t.Run("interactive asks the selector", func(t *testing.T) {
		selector := &stubSelector{pick: 1}
		artifact, err := newLoader(root, selector, false).Load(context.Background(), "Token")
		require.NoError(t, err)
		assert.Equal(t, 1, selector.calls)
		assert.Equal(t, "src/b/Token.sol", artifact.SourceName)
	})
}

func TestLoader_SameSourceInSeveralRoots(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "artifacts", "contracts", "Gateway.sol", "Gateway.json"),
		hardhatArtifact("Gateway", "contracts/Gateway.sol", "0x0001"))
	writeFile(t, filepath.Join(root, "out", "Gateway.sol", "Gateway.json"),
		foundryArtifact("contracts/Gateway.sol", "Gateway", "0.8.24", "0x0002"))

	artifact, err := newLoader(root, nil, true).Load(context.Background(), "Gateway")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x01}, artifact.Bytecode, "artifacts is searched first")
}

func TestLoader_ZksolcArtifactRejected(t *testing.T) {
	root := t.TempDir()
	zkArtifact := `{"_format":"hh-zksolc-artifact-1","contractName":"Gateway","sourceName":"contracts/Gateway.sol",` +
		`"abi":` + gatewayABI + `,"bytecode":"0x0001","factoryDeps":{}}`

	t.Run("not searched by default", func(t *testing.T) {
		writeFile(t, filepath.Join(root, "artifacts-zk", "contracts", "Gateway.sol", "Gateway.json"), zkArtifact)
		_, err := newLoader(root, nil, true).Load(context.Background(), "Gateway")
		assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
	})

	t.Run("configured root fails fast", func(t *testing.T) {
		cfg := &config.RuntimeConfig{
			ProjectRoot:    root,
			NonInteractive: true,
			File:           &config.SlingFile{Artifacts: config.ArtifactsConfig{Paths: []string{"artifacts-zk"}}},
		}
		loader := NewLoader(cfg, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

		_, err := loader.Load(context.Background(), "Gateway")
		var unsupported *domain.UnsupportedArtifactError
		require.ErrorAs(t, err, &unsupported)
		assert.Equal(t, "hh-zksolc-artifact-1", unsupported.Format)
		assert.ErrorIs(t, err, domain.ErrUnsupportedArtifact)
	})
}

func TestLoader_SkipsDebugAndBuildInfo(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "artifacts", "contracts", "A.sol", "A.dbg.json"), `{"buildInfo":"x"}`)
	writeFile(t, filepath.Join(root, "artifacts", "build-info", "A.sol", "A.json"), hardhatArtifact("A", "contracts/A.sol", "0x01"))

	_, err := newLoader(root, nil, true).Load(context.Background(), "A")
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
}

func TestDecodeBytecode(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []byte
		wantErr string
	}{
		{name: "hardhat string", raw: `"0x6001"`, want: []byte{0x60, 0x01}},
		{name: "foundry object", raw: `{"object":"0x6001","linkReferences":{}}`, want: []byte{0x60, 0x01}},
		{name: "missing prefix", raw: `"6001"`, want: []byte{0x60, 0x01}},
		{name: "interface", raw: `"0x"`, wantErr: "no bytecode"},
		{name: "unlinked library", raw: `"0x73__$abc$__"`, wantErr: "unlinked library"},
		{name: "number", raw: `5`, wantErr: "unrecognized bytecode format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeBytecode([]byte(tt.raw))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
