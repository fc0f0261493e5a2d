package plans

import (
	"fmt"
	"sort"

	"github.com/trebuchet-org/sling/internal/domain"
)

// Built-in plan names
const (
	LockupPeriphery = "lockup-periphery"
	ZkGateway       = "zk-gateway"
)

// Default constructor parameters of the zk-gateway plan for ZKsync Era mainnet
const (
	DefaultBatchLockup = "0x1D68417ff71855Eb0237Ff03a8FfF02Ef67e4AFb"
	DefaultZkToken     = "0x69e5DC39E2bCb1C17053d2A4ee7CAEAAc5D36f96"
	DefaultTimelock    = "0x6fEB7Ca79CFD7e1CF761c7Aa8659F24e392fbc7D"
	DefaultMinterCap   = "100000000000000000000000000"
)

// Lookup returns a plan parameter, or "" when it is not set
type Lookup func(key string) string

// requiredParams have no default value
var requiredParams = map[string]bool{"ADMIN": true}

type builtin struct {
	description string
	build       func(lookup Lookup) (*domain.Plan, error)
}

var builtins = map[string]builtin{
	LockupPeriphery: {
		description: "Deploy and verify SablierV2BatchLockup and SablierV2MerkleLockupFactory",
		build:       lockupPeriphery,
	},
	ZkGateway: {
		description: "Deploy ZkNationSablierGateway and its ZkCappedMinter, verify both and connect them",
		build:       zkGateway,
	},
}

// BuiltinNames returns the names of the built-in plans in sorted order
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtin builds the named built-in plan from the given parameters
func Builtin(name string, lookup Lookup) (*domain.Plan, error) {
	b, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrPlanNotFound, name)
	}

	plan, err := b.build(lookup)
	if err != nil {
		return nil, err
	}
	plan.Name = name
	plan.Description = b.description
	return plan, nil
}

func lockupPeriphery(Lookup) (*domain.Plan, error) {
	return &domain.Plan{
		Steps: []domain.Step{
			domain.Deploy("SablierV2BatchLockup"),
			domain.Verify("SablierV2BatchLockup"),
			domain.Deploy("SablierV2MerkleLockupFactory"),
			domain.Verify("SablierV2MerkleLockupFactory"),
		},
	}, nil
}

func zkGateway(lookup Lookup) (*domain.Plan, error) {
	admin, err := addressParam(lookup, "ADMIN", "")
	if err != nil {
		return nil, err
	}
	batchLockup, err := addressParam(lookup, "BATCH_LOCKUP", DefaultBatchLockup)
	if err != nil {
		return nil, err
	}
	zkToken, err := addressParam(lookup, "ZK_TOKEN", DefaultZkToken)
	if err != nil {
		return nil, err
	}
	timelock, err := addressParam(lookup, "TIMELOCK", DefaultTimelock)
	if err != nil {
		return nil, err
	}
	minterCap := param(lookup, "MINTER_CAP", DefaultMinterCap)

	return &domain.Plan{
		Steps: []domain.Step{
			domain.Deploy("ZkNationSablierGateway",
				domain.Lit(admin),
				domain.Lit(batchLockup),
				domain.Lit(zkToken),
				domain.Lit(timelock),
			),
			domain.Deploy("ZkCappedMinter",
				domain.Lit(zkToken),
				domain.Ref("ZkNationSablierGateway"),
				domain.Lit(minterCap),
			),
			domain.Verify("ZkNationSablierGateway"),
			domain.Verify("ZkCappedMinter"),
			domain.Call("ZkNationSablierGateway", "setZkTokenMinter", domain.Ref("ZkCappedMinter")),
		},
	}, nil
}

func param(lookup Lookup, key, fallback string) string {
	if lookup != nil {
		if v := lookup(key); v != "" {
			return v
		}
	}
	return fallback
}

func addressParam(lookup Lookup, key, fallback string) (string, error) {
	raw := param(lookup, key, fallback)
	if raw == "" {
		return "", domain.NewConfigurationError("params."+key, "is required", nil)
	}
	addr, err := domain.NormalizeAddress(raw)
	if err != nil {
		return "", domain.NewConfigurationError("params."+key, "must be an address", err)
	}
	return addr, nil
}
