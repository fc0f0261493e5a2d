package verification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/config"
	"github.com/trebuchet-org/sling/internal/usecase"
)

const standardJSONInput = "solidity-standard-json-input"

// verdictDelay is how long the explorer gets to compile a submission before
// its status is read back
const verdictDelay = 5 * time.Second

// TimerSleeper waits on a real timer
type TimerSleeper struct{}

// Sleep returns early with the context error when ctx is done
func (TimerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// VerifierAdapter implements ContractVerifier against Etherscan-compatible explorers
type VerifierAdapter struct {
	service     *Service
	sleeper     usecase.Sleeper
	settleDelay time.Duration
	log         *slog.Logger
}

// NewVerifierAdapter creates a verifier that waits settleDelay before each submission
func NewVerifierAdapter(cfg *config.RuntimeConfig, service *Service, sleeper usecase.Sleeper, log *slog.Logger) *VerifierAdapter {
	return &VerifierAdapter{
		service:     service,
		sleeper:     sleeper,
		settleDelay: cfg.SettleDelay,
		log:         log,
	}
}

// Verify submits the request once and reads the verdict back once. Every
// failure, including an explorer reporting the contract as already verified,
// yields a failed outcome. A verdict still pending stays submitted.
func (v *VerifierAdapter) Verify(ctx context.Context, request *domain.VerificationRequest) domain.VerificationOutcome {
	outcome := domain.VerificationOutcome{Address: request.Address}
	explorer := request.Network.Explorer

	if explorer.APIURL == "" {
		outcome.Status = domain.VerificationSkipped
		outcome.Message = fmt.Sprintf("no explorer configured for %s", request.Network.Name)
		return outcome
	}

	params, err := buildParams(request)
	if err != nil {
		return failed(outcome, err.Error())
	}

	// Explorers index new contracts with a delay
	if err := v.sleeper.Sleep(ctx, v.settleDelay); err != nil {
		return failed(outcome, fmt.Sprintf("cancelled before submission: %v", err))
	}

	v.log.Debug("submitting verification", "contract", params.ContractName, "address", request.Address, "api", explorer.APIURL)
	result, err := v.service.Submit(ctx, explorer, *params)
	if err != nil {
		return failed(outcome, err.Error())
	}
	if !result.Success {
		return failed(outcome, result.Message)
	}

	outcome.Status = domain.VerificationSubmitted
	outcome.GUID = result.GUID
	outcome.Message = result.Message
	outcome.URL = explorerLink(explorer, request.Address)
	if outcome.GUID == "" {
		return outcome
	}
	return v.verdict(ctx, request.Network, outcome)
}

// verdict queries checkverifystatus once for an accepted submission
func (v *VerifierAdapter) verdict(ctx context.Context, network *domain.NetworkContext, outcome domain.VerificationOutcome) domain.VerificationOutcome {
	if err := v.sleeper.Sleep(ctx, verdictDelay); err != nil {
		return outcome
	}

	status, err := v.CheckStatus(ctx, network, outcome.GUID)
	if err != nil {
		v.log.Debug("verification status unavailable", "guid", outcome.GUID, "error", err)
		return outcome
	}

	switch {
	case status.Verified:
		outcome.Status = domain.VerificationVerified
	case status.Pending:
		outcome.Status = domain.VerificationSubmitted
	default:
		outcome.Status = domain.VerificationFailed
	}
	outcome.Message = status.Message
	return outcome
}

// CheckStatus queries the explorer once for a previous submission
func (v *VerifierAdapter) CheckStatus(ctx context.Context, network *domain.NetworkContext, guid string) (*usecase.VerificationStatusResult, error) {
	result, err := v.service.CheckStatus(ctx, network.Explorer, guid)
	if err != nil {
		return nil, err
	}
	return &usecase.VerificationStatusResult{
		GUID:     guid,
		Pending:  strings.Contains(strings.ToLower(result.Message), "pending"),
		Verified: result.Success,
		Message:  result.Message,
	}, nil
}

func failed(outcome domain.VerificationOutcome, message string) domain.VerificationOutcome {
	outcome.Status = domain.VerificationFailed
	outcome.Message = message
	return outcome
}

func buildParams(request *domain.VerificationRequest) (*VerificationParams, error) {
	artifact := request.Artifact
	if artifact == nil {
		return nil, fmt.Errorf("no artifact for %s", request.Address)
	}
	if artifact.BuildInfoPath == "" {
		return nil, fmt.Errorf("no build info found for %s, compiler input is required for verification", artifact.Name)
	}
	if artifact.CompilerVersion == "" {
		return nil, fmt.Errorf("compiler version of %s is unknown", artifact.Name)
	}

	input, err := readCompilerInput(artifact.BuildInfoPath)
	if err != nil {
		return nil, err
	}

	return &VerificationParams{
		Address:         request.Address,
		ContractName:    artifact.FullName(),
		SourceCode:      input,
		CodeFormat:      standardJSONInput,
		CompilerVersion: "v" + strings.TrimPrefix(artifact.CompilerVersion, "v"),
		ConstructorArgs: strings.TrimPrefix(request.EncodedArgs, "0x"),
	}, nil
}

// readCompilerInput extracts the standard JSON input from a build-info file
func readCompilerInput(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read build info: %w", err)
	}
	var info struct {
		Input json.RawMessage `json:"input"`
	}
	if err := json.Unmarshal(data, &info); err != nil {
		return "", fmt.Errorf("failed to parse build info %s: %w", path, err)
	}
	if len(info.Input) == 0 {
		return "", fmt.Errorf("build info %s has no compiler input", path)
	}
	return string(info.Input), nil
}

func explorerLink(explorer domain.ExplorerConfig, address string) string {
	if explorer.BrowserURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/address/%s#code", strings.TrimSuffix(explorer.BrowserURL, "/"), address)
}

// Ensure the adapter implements the interface
var (
	_ usecase.ContractVerifier = (*VerifierAdapter)(nil)
	_ usecase.Sleeper          = TimerSleeper{}
)
