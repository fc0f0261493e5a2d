package usecase

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/trebuchet-org/sling/internal/domain"
)

// ResolveArgs substitutes every placeholder in template with the address of
// the prior deployment it names. Literals pass through unchanged.
func ResolveArgs(template []domain.Argument, prior map[string]*domain.DeployedContract) ([]any, error) {
	resolved := make([]any, 0, len(template))
	for _, arg := range template {
		if !arg.IsRef() {
			resolved = append(resolved, arg.Value)
			continue
		}

		deployed, ok := prior[arg.Ref]
		if !ok || deployed == nil {
			return nil, &domain.DependencyUnresolvedError{Ref: arg.Ref}
		}
		resolved = append(resolved, deployed.Address)
	}
	return resolved, nil
}

// StringifyArgs renders wired arguments for verification requests and output
func StringifyArgs(args []any) []string {
	return lo.Map(args, func(arg any, _ int) string {
		return stringifyArg(arg)
	})
}

func stringifyArg(arg any) string {
	switch v := arg.(type) {
	case nil:
		return ""
	case string:
		return v
	case common.Address:
		return v.Hex()
	case *big.Int:
		return v.String()
	case []byte:
		return "0x" + common.Bytes2Hex(v)
	case []any:
		return "[" + strings.Join(StringifyArgs(v), ",") + "]"
	case []string:
		return "[" + strings.Join(v, ",") + "]"
	default:
		return fmt.Sprint(v)
	}
}
