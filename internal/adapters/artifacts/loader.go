package artifacts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/config"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// zksolcFormat marks hardhat-zksync output, which holds EraVM bytecode
const zksolcFormat = "hh-zksolc-artifact-1"

// Loader resolves compiled contracts from Hardhat (artifacts/) and Foundry
// (out/) build directories. Both lay artifacts out as
// <root>/.../<File>.sol/<Name>.json.
type Loader struct {
	projectRoot    string
	roots          []string
	selector       usecase.ContractSelector
	nonInteractive bool
	log            *slog.Logger

	mu         sync.Mutex
	indexed    bool
	byName     map[string][]*entry
	buildInfos map[string]map[string]string // root -> source name -> build-info path
}

type entry struct {
	name       string
	sourceName string
	path       string
	root       string
	rank       int // position of root in search order
}

// NewLoader creates a new artifact loader
func NewLoader(cfg *config.RuntimeConfig, selector usecase.ContractSelector, log *slog.Logger) *Loader {
	return &Loader{
		projectRoot:    cfg.ProjectRoot,
		roots:          cfg.ArtifactPaths(),
		selector:       selector,
		nonInteractive: cfg.NonInteractive,
		log:            log,
		buildInfos:     make(map[string]map[string]string),
	}
}

// Load resolves a contract by exact name, or by "path/File.sol:Name"
func (l *Loader) Load(ctx context.Context, name string) (*domain.ContractArtifact, error) {
	if err := l.index(ctx); err != nil {
		return nil, err
	}

	candidates := l.find(name)
	switch len(candidates) {
	case 0:
		return nil, &domain.ArtifactNotFoundError{Name: name, Searched: l.roots}
	case 1:
		return l.parse(candidates[0])
	}

	matches := make([]*domain.ContractArtifact, 0, len(candidates))
	for _, c := range candidates {
		artifact, err := l.parse(c)
		if err != nil {
			return nil, err
		}
		matches = append(matches, artifact)
	}

	if l.selector == nil || l.nonInteractive {
		return nil, &domain.AmbiguousArtifactError{Name: name, Matches: matches}
	}
	return l.selector.SelectContract(ctx, name, matches)
}

// find returns the candidates for a name. The same source compiled into
// several roots resolves to the earliest root.
func (l *Loader) find(name string) []*entry {
	contractName, pathHint := name, ""
	if idx := strings.LastIndex(name, ":"); idx != -1 {
		pathHint, contractName = name[:idx], name[idx+1:]
	}

	bySource := make(map[string]*entry)
	for _, e := range l.byName[contractName] {
		if pathHint != "" && !matchesPath(e, pathHint) {
			continue
		}
		if prev, ok := bySource[e.sourceName]; !ok || e.rank < prev.rank {
			bySource[e.sourceName] = e
		}
	}

	out := make([]*entry, 0, len(bySource))
	for _, e := range bySource {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].sourceName < out[j].sourceName
	})
	return out
}

func matchesPath(e *entry, hint string) bool {
	hint = filepath.ToSlash(strings.TrimPrefix(hint, "./"))
	return e.sourceName == hint || strings.HasSuffix(e.sourceName, "/"+hint)
}

func (l *Loader) index(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.indexed {
		return nil
	}

	l.byName = make(map[string][]*entry)
	for rank, root := range l.roots {
		dir := root
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(l.projectRoot, root)
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}

		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == "build-info" {
					return filepath.SkipDir
				}
				return nil
			}
			if !isArtifactFile(path) {
				return nil
			}

			sourceName, err := readSourceName(path)
			if err != nil {
				l.log.Debug("skipping unreadable artifact", "path", path, "error", err)
				return nil
			}
			name := strings.TrimSuffix(filepath.Base(path), ".json")
			l.byName[name] = append(l.byName[name], &entry{
				name:       name,
				sourceName: sourceName,
				path:       path,
				root:       dir,
				rank:       rank,
			})
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to index artifacts in %s: %w", root, err)
		}
	}

	l.indexed = true
	l.log.Debug("indexed artifacts", "roots", l.roots, "contracts", len(l.byName))
	return nil
}

func isArtifactFile(path string) bool {
	if !strings.HasSuffix(path, ".json") || strings.HasSuffix(path, ".dbg.json") {
		return false
	}
	return strings.HasSuffix(filepath.Dir(path), ".sol") || strings.HasSuffix(filepath.Dir(path), ".vy")
}

// artifactFile covers the fields of Hardhat and Foundry artifacts
type artifactFile struct {
	Format       string          `json:"_format"`
	ContractName string          `json:"contractName"`
	SourceName   string          `json:"sourceName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     json.RawMessage `json:"bytecode"`
	Metadata     json.RawMessage `json:"metadata"`
}

type foundryMetadata struct {
	Compiler struct {
		Version string `json:"version"`
	} `json:"compiler"`
	Settings struct {
		CompilationTarget map[string]string `json:"compilationTarget"`
	} `json:"settings"`
}

func (a *artifactFile) foundryMetadata() *foundryMetadata {
	if len(a.Metadata) == 0 {
		return nil
	}
	raw := []byte(a.Metadata)
	// rawMetadata style: the object is embedded as a JSON string
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		raw = []byte(s)
	}
	var meta foundryMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil
	}
	return &meta
}

func (a *artifactFile) sourceName() string {
	if a.SourceName != "" {
		return a.SourceName
	}
	if meta := a.foundryMetadata(); meta != nil {
		for source := range meta.Settings.CompilationTarget {
			return source
		}
	}
	return ""
}

func readArtifact(path string) (*artifactFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file artifactFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid artifact JSON: %w", err)
	}
	return &file, nil
}

func readSourceName(path string) (string, error) {
	file, err := readArtifact(path)
	if err != nil {
		return "", err
	}
	if source := file.sourceName(); source != "" {
		return source, nil
	}
	// Fall back to the <File>.sol directory name
	return filepath.ToSlash(filepath.Base(filepath.Dir(path))), nil
}

func (l *Loader) parse(e *entry) (*domain.ContractArtifact, error) {
	file, err := readArtifact(e.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", e.path, err)
	}
	if file.Format == zksolcFormat {
		return nil, &domain.UnsupportedArtifactError{Name: e.name, Path: e.path, Format: file.Format}
	}

	parsedABI, err := abi.JSON(bytes.NewReader(file.ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI of %s: %w", e.name, err)
	}

	bytecode, err := decodeBytecode(file.Bytecode)
	if err != nil {
		return nil, fmt.Errorf("artifact %s: %w", e.name, err)
	}

	artifact := &domain.ContractArtifact{
		Name:       e.name,
		SourceName: e.sourceName,
		Path:       e.path,
		ABI:        parsedABI,
		Bytecode:   bytecode,
	}

	if meta := file.foundryMetadata(); meta != nil {
		artifact.CompilerVersion = meta.Compiler.Version
		artifact.BuildInfoPath = l.foundryBuildInfo(e)
	} else {
		artifact.BuildInfoPath, artifact.CompilerVersion = hardhatBuildInfo(e.path)
	}

	return artifact, nil
}

// decodeBytecode accepts "0x..." or {"object": "0x..."}
func decodeBytecode(raw json.RawMessage) ([]byte, error) {
	var hex string
	if err := json.Unmarshal(raw, &hex); err != nil {
		var obj struct {
			Object string `json:"object"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("unrecognized bytecode format")
		}
		hex = obj.Object
	}

	hex = strings.TrimSpace(hex)
	if hex == "" || hex == "0x" {
		return nil, fmt.Errorf("no bytecode (abstract contract or interface?)")
	}
	if strings.Contains(hex, "__") {
		return nil, fmt.Errorf("bytecode has unlinked library references")
	}
	if !strings.HasPrefix(hex, "0x") {
		hex = "0x" + hex
	}
	return hexutil.Decode(hex)
}

// hardhatBuildInfo follows the <Name>.dbg.json pointer next to a Hardhat artifact
func hardhatBuildInfo(artifactPath string) (path, compilerVersion string) {
	dbgPath := strings.TrimSuffix(artifactPath, ".json") + ".dbg.json"
	data, err := os.ReadFile(dbgPath)
	if err != nil {
		return "", ""
	}
	var dbg struct {
		BuildInfo string `json:"buildInfo"`
	}
	if err := json.Unmarshal(data, &dbg); err != nil || dbg.BuildInfo == "" {
		return "", ""
	}

	path = filepath.Clean(filepath.Join(filepath.Dir(dbgPath), dbg.BuildInfo))
	data, err = os.ReadFile(path)
	if err != nil {
		return "", ""
	}
	var info struct {
		SolcVersion     string `json:"solcVersion"`
		SolcLongVersion string `json:"solcLongVersion"`
	}
	if err := json.Unmarshal(data, &info); err != nil {
		return path, ""
	}
	if info.SolcLongVersion != "" {
		return path, info.SolcLongVersion
	}
	return path, info.SolcVersion
}

// foundryBuildInfo finds the out/build-info file that compiled the entry's source
func (l *Loader) foundryBuildInfo(e *entry) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	index, ok := l.buildInfos[e.root]
	if !ok {
		index = make(map[string]string)
		files, _ := filepath.Glob(filepath.Join(e.root, "build-info", "*.json"))
		sort.Strings(files)
		for _, file := range files {
			data, err := os.ReadFile(file)
			if err != nil {
				continue
			}
			var info struct {
				SourceIDToPath map[string]string `json:"source_id_to_path"`
				Input          struct {
					Sources map[string]json.RawMessage `json:"sources"`
				} `json:"input"`
			}
			if err := json.Unmarshal(data, &info); err != nil {
				continue
			}
			for source := range info.Input.Sources {
				index[source] = file
			}
			for _, source := range info.SourceIDToPath {
				if _, seen := index[source]; !seen {
					index[source] = file
				}
			}
		}
		l.buildInfos[e.root] = index
	}
	return index[e.sourceName]
}
