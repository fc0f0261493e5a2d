package adapters

import (
	"github.com/google/wire"
	"github.com/trebuchet-org/sling/internal/adapters/abi"
	"github.com/trebuchet-org/sling/internal/adapters/artifacts"
	internalconfig "github.com/trebuchet-org/sling/internal/adapters/config"
	"github.com/trebuchet-org/sling/internal/adapters/interactive"
	"github.com/trebuchet-org/sling/internal/adapters/senders"
	"github.com/trebuchet-org/sling/internal/adapters/verification"
	"github.com/trebuchet-org/sling/internal/plans"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// ProvideDialer provides the RPC dialer used to bind deployers
func ProvideDialer() senders.Dialer {
	return senders.DialEthclient
}

// ProvideSleeper provides the wall-clock sleeper for the verification settle delay
func ProvideSleeper() verification.TimerSleeper {
	return verification.TimerSleeper{}
}

// ConfigSet provides configuration-based implementations
var ConfigSet = wire.NewSet(
	internalconfig.NewNetworkResolverAdapter,
	wire.Bind(new(usecase.NetworkResolver), new(*internalconfig.NetworkResolverAdapter)),

	plans.NewRepository,
	wire.Bind(new(usecase.PlanRepository), new(*plans.Repository)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.ContractSelector), new(*interactive.SelectorAdapter)),
	wire.Bind(new(usecase.Confirmer), new(*interactive.SelectorAdapter)),
)

// ArtifactSet provides build output and ABI implementations
var ArtifactSet = wire.NewSet(
	artifacts.NewLoader,
	wire.Bind(new(usecase.ArtifactLoader), new(*artifacts.Loader)),

	abi.NewEncoder,
	wire.Bind(new(usecase.ArgumentEncoder), new(*abi.Encoder)),
)

// BlockchainSet provides signer binding over JSON-RPC
var BlockchainSet = wire.NewSet(
	ProvideDialer,
	senders.NewService,
	wire.Bind(new(usecase.SignerBinder), new(*senders.Service)),
)

// VerificationSet provides explorer verification
var VerificationSet = wire.NewSet(
	ProvideSleeper,
	wire.Bind(new(usecase.Sleeper), new(verification.TimerSleeper)),
	verification.NewService,
	verification.NewVerifierAdapter,
	wire.Bind(new(usecase.ContractVerifier), new(*verification.VerifierAdapter)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	ConfigSet,
	InteractiveSet,
	ArtifactSet,
	BlockchainSet,
	VerificationSet,
)
