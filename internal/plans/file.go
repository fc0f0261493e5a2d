package plans

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/trebuchet-org/sling/internal/domain"
	"gopkg.in/yaml.v3"
)

// File is the YAML representation of a plan:
//
//	name: gateway
//	steps:
//	  - deploy: ZkNationSablierGateway
//	    args: ["${ADMIN}", "0x1D68417ff71855Eb0237Ff03a8FfF02Ef67e4AFb"]
//	  - deploy: ZkCappedMinter
//	    args: ["0x69e5...", {ref: ZkNationSablierGateway}, "100000000000000000000000000"]
//	  - verify: ZkNationSablierGateway
//	  - call: ZkNationSablierGateway
//	    method: setZkTokenMinter
//	    args: [{ref: ZkCappedMinter}]
type File struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Steps       []FileStep `yaml:"steps"`
}

// FileStep is one step of a plan file. Exactly one of Deploy, Verify or Call
// is set.
type FileStep struct {
	Deploy string      `yaml:"deploy"`
	ID     string      `yaml:"id"`
	Verify string      `yaml:"verify"`
	Call   string      `yaml:"call"`
	Method string      `yaml:"method"`
	Args   []yaml.Node `yaml:"args"`
}

// FileArg is a literal YAML value or a {ref: Name} mapping
type FileArg struct {
	Value any
	Ref   string
}

// decodeArg decodes scalars, sequences and {ref: Name} mappings. Args are kept
// as raw nodes on FileStep because yaml.v3 drops null sequence items before
// any unmarshaler sees them, which would shift every later position. Integer
// scalars keep their source text so values wider than 64 bits survive.
func decodeArg(node *yaml.Node) (FileArg, error) {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		return decodeArg(node.Alias)
	}
	if node.Kind != yaml.MappingNode {
		v, err := decodeValue(node)
		if err != nil {
			return FileArg{}, err
		}
		return FileArg{Value: v}, nil
	}

	var ref struct {
		Ref string `yaml:"ref"`
	}
	if err := node.Decode(&ref); err != nil {
		return FileArg{}, err
	}
	if ref.Ref == "" {
		return FileArg{}, fmt.Errorf("line %d: mapping argument must be {ref: Name}", node.Line)
	}
	return FileArg{Ref: ref.Ref}, nil
}

func decodeValue(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.Tag {
		case "!!null":
			return nil, nil
		case "!!bool":
			var b bool
			if err := node.Decode(&b); err != nil {
				return nil, err
			}
			return b, nil
		default:
			return node.Value, nil
		}
	case yaml.SequenceNode:
		out := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			v, err := decodeValue(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.AliasNode:
		return decodeValue(node.Alias)
	default:
		return nil, fmt.Errorf("line %d: unsupported argument value", node.Line)
	}
}

// LoadFile reads a YAML plan file. ${VAR} references in string values are
// expanded through lookup.
func LoadFile(path string, lookup Lookup) (*domain.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	plan, err := Parse(data, lookup)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if plan.Name == "" {
		plan.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return plan, nil
}

// Parse decodes a YAML plan document into a plan
func Parse(data []byte, lookup Lookup) (*domain.Plan, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	expand := func(s string) string {
		return os.Expand(s, func(key string) string {
			return param(lookup, key, "")
		})
	}

	plan := &domain.Plan{
		Name:        file.Name,
		Description: file.Description,
	}

	for i, fs := range file.Steps {
		step, err := fs.toStep(expand)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		plan.Steps = append(plan.Steps, step)
	}

	return plan, nil
}

func (fs FileStep) toStep(expand func(string) string) (domain.Step, error) {
	set := 0
	for _, v := range []string{fs.Deploy, fs.Verify, fs.Call} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return domain.Step{}, fmt.Errorf("exactly one of deploy, verify or call must be set")
	}

	var args []domain.Argument
	for i := range fs.Args {
		a, err := decodeArg(&fs.Args[i])
		if err != nil {
			return domain.Step{}, err
		}
		if a.Ref != "" {
			args = append(args, domain.Ref(a.Ref))
			continue
		}
		args = append(args, domain.Lit(expandValue(a.Value, expand)))
	}

	switch {
	case fs.Deploy != "":
		step := domain.Deploy(fs.Deploy, args...)
		if fs.ID != "" {
			step.ID = fs.ID
		}
		return step, nil
	case fs.Verify != "":
		if len(args) > 0 {
			return domain.Step{}, fmt.Errorf("verify step takes no args")
		}
		return domain.Verify(fs.Verify), nil
	default:
		return domain.Call(fs.Call, fs.Method, args...), nil
	}
}

func expandValue(v any, expand func(string) string) any {
	switch val := v.(type) {
	case string:
		return expand(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = expandValue(item, expand)
		}
		return out
	default:
		return v
	}
}
