package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for the deployment taxonomy. Typed errors below unwrap to
// one of these so callers can classify with errors.Is.
var (
	// ErrConfiguration is returned for bad or missing network/credential configuration
	ErrConfiguration = errors.New("configuration error")

	// ErrMissingCredential marks the soft-fail signer condition
	ErrMissingCredential = errors.New("missing credential")

	// ErrArtifactNotFound is returned when no build output matches a contract name
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrDependencyUnresolved is returned when a plan references a contract that
	// is not deployed by an earlier step
	ErrDependencyUnresolved = errors.New("dependency unresolved")

	// ErrDeploymentFailed is returned when a contract-creation transaction fails
	ErrDeploymentFailed = errors.New("deployment failed")

	// ErrConfigurationCallFailed is returned when a post-deploy call reverts or is rejected
	ErrConfigurationCallFailed = errors.New("configuration call failed")

	// ErrVerificationFailed is returned when explorer verification fails
	ErrVerificationFailed = errors.New("verification failed")

	// ErrPlanNotFound is returned when no built-in plan or plan file matches a name
	ErrPlanNotFound = errors.New("plan not found")

	// ErrUnsupportedArtifact is returned for build output the plain EVM deploy
	// path cannot send, such as zksolc (EraVM) artifacts
	ErrUnsupportedArtifact = errors.New("unsupported artifact")

	// ErrInvalidAddress is returned when an Ethereum address is invalid
	ErrInvalidAddress = errors.New("invalid address")
)

// ConfigurationError describes a fatal pre-flight configuration problem
type ConfigurationError struct {
	Key    string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := e.Reason
	if e.Key != "" {
		msg = fmt.Sprintf("%s: %s", e.Key, e.Reason)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return "configuration error: " + msg
}

func (e *ConfigurationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrConfiguration, e.Err}
	}
	return []error{ErrConfiguration}
}

// NewConfigurationError builds a ConfigurationError for a config key
func NewConfigurationError(key, reason string, err error) *ConfigurationError {
	return &ConfigurationError{Key: key, Reason: reason, Err: err}
}

// MissingCredential is the result a signer returns when no key is configured.
// It is a value, not a thrown error: the run aborts after printing Guidance.
type MissingCredential struct {
	EnvVar string
}

func (m *MissingCredential) Error() string {
	return fmt.Sprintf("no deployer credential found in %s", m.EnvVar)
}

func (m *MissingCredential) Unwrap() error {
	return ErrMissingCredential
}

// Guidance returns the operator-facing hint for a missing credential
func (m *MissingCredential) Guidance() string {
	return fmt.Sprintf("Please set the %s in your .env file", m.EnvVar)
}

// ArtifactNotFoundError is returned when no artifact matches a name exactly
type ArtifactNotFoundError struct {
	Name     string
	Searched []string
}

func (e *ArtifactNotFoundError) Error() string {
	if len(e.Searched) == 0 {
		return fmt.Sprintf("artifact not found: %s", e.Name)
	}
	return fmt.Sprintf("artifact not found: %s (searched %s)", e.Name, strings.Join(e.Searched, ", "))
}

func (e *ArtifactNotFoundError) Unwrap() error {
	return ErrArtifactNotFound
}

// UnsupportedArtifactError is returned when an artifact was produced by a
// toolchain whose bytecode cannot be deployed with a plain creation transaction
type UnsupportedArtifactError struct {
	Name   string
	Path   string
	Format string
}

func (e *UnsupportedArtifactError) Error() string {
	return fmt.Sprintf("artifact %s (%s) has format %s: ZKsync EraVM bytecode needs an EIP-712 deployment through ContractDeployer, which is not supported; compile with solc into artifacts/ or out/",
		e.Name, e.Path, e.Format)
}

func (e *UnsupportedArtifactError) Unwrap() error {
	return ErrUnsupportedArtifact
}

// AmbiguousArtifactError is returned when several artifacts share a contract name
type AmbiguousArtifactError struct {
	Name    string
	Matches []*ContractArtifact
}

func (e *AmbiguousArtifactError) Error() string {
	sorted := make([]*ContractArtifact, len(e.Matches))
	copy(sorted, e.Matches)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].FullName() < sorted[j].FullName()
	})

	var suggestions []string
	for _, a := range sorted {
		suggestions = append(suggestions, fmt.Sprintf("  - %s (%s)", a.Name, a.SourceName))
	}

	return fmt.Sprintf("multiple artifacts found matching %s - use path/File.sol:Name to disambiguate:\n%s",
		e.Name, strings.Join(suggestions, "\n"))
}

// DependencyUnresolvedError is returned when a placeholder or step target names
// a contract not deployed by an earlier step
type DependencyUnresolvedError struct {
	Ref  string
	Step string
}

func (e *DependencyUnresolvedError) Error() string {
	if e.Step == "" {
		return fmt.Sprintf("dependency unresolved: %s has not been deployed", e.Ref)
	}
	return fmt.Sprintf("dependency unresolved: step %s references %s, which is not deployed by an earlier step", e.Step, e.Ref)
}

func (e *DependencyUnresolvedError) Unwrap() error {
	return ErrDependencyUnresolved
}

// StepError identifies which plan step failed
type StepError struct {
	Index int
	Step  Step
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s) failed: %v", e.Index+1, e.Step.Label(), e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
