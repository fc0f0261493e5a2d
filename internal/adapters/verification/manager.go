package verification

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/trebuchet-org/sling/internal/domain"
)

const requestTimeout = 30 * time.Second

// Service talks to Etherscan-compatible explorer APIs
type Service struct {
	client *http.Client
}

// NewService creates a new explorer API client
func NewService() *Service {
	return &Service{
		client: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// VerificationParams contains parameters for a verifysourcecode submission
type VerificationParams struct {
	Address         string
	ContractName    string // fully qualified "source:Name"
	SourceCode      string
	CodeFormat      string
	CompilerVersion string
	ConstructorArgs string // hex without 0x
}

// VerificationResult is the explorer's answer to a submission or status query
type VerificationResult struct {
	Success bool
	Message string
	GUID    string
}

// etherscanResponse represents Etherscan API response
type etherscanResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  string `json:"result"`
}

// Submit posts one verifysourcecode request. A rejection by the explorer is
// reported in the result, transport failures as errors.
func (s *Service) Submit(ctx context.Context, explorer domain.ExplorerConfig, params VerificationParams) (*VerificationResult, error) {
	data := url.Values{}
	data.Set("apikey", explorer.APIKey)
	data.Set("module", "contract")
	data.Set("action", "verifysourcecode")
	data.Set("contractaddress", params.Address)
	data.Set("sourceCode", params.SourceCode)
	data.Set("codeformat", params.CodeFormat)
	data.Set("contractname", params.ContractName)
	data.Set("compilerversion", params.CompilerVersion)
	if params.ConstructorArgs != "" {
		data.Set("constructorArguements", params.ConstructorArgs) // Note: Etherscan typo
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, explorer.APIURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build verification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	result, err := s.do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to submit verification: %w", err)
	}

	if result.Status != "1" {
		return &VerificationResult{Success: false, Message: result.Result}, nil
	}
	return &VerificationResult{Success: true, Message: result.Message, GUID: result.Result}, nil
}

// CheckStatus performs a single checkverifystatus query
func (s *Service) CheckStatus(ctx context.Context, explorer domain.ExplorerConfig, guid string) (*VerificationResult, error) {
	params := url.Values{}
	params.Set("apikey", explorer.APIKey)
	params.Set("module", "contract")
	params.Set("action", "checkverifystatus")
	params.Set("guid", guid)

	sep := "?"
	if strings.Contains(explorer.APIURL, "?") {
		sep = "&"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, explorer.APIURL+sep+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build status request: %w", err)
	}

	result, err := s.do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to check status: %w", err)
	}

	return &VerificationResult{
		Success: result.Status == "1",
		Message: result.Result,
		GUID:    guid,
	}, nil
}

func (s *Service) do(req *http.Request) (*etherscanResponse, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("explorer returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result etherscanResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &result, nil
}
