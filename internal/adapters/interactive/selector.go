package interactive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/config"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// SelectorAdapter handles interactive selection
type SelectorAdapter struct {
	config *config.RuntimeConfig
}

// NewSelectorAdapter creates a new selector adapter
func NewSelectorAdapter(cfg *config.RuntimeConfig) *SelectorAdapter {
	return &SelectorAdapter{config: cfg}
}

// SelectContract asks the operator to pick one of several artifacts sharing a name
func (s *SelectorAdapter) SelectContract(ctx context.Context, name string, candidates []*domain.ContractArtifact) (*domain.ContractArtifact, error) {
	if len(candidates) == 0 {
		return nil, &domain.ArtifactNotFoundError{Name: name}
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}
	// In non-interactive mode, we can't select
	if s.config.NonInteractive {
		return nil, &domain.AmbiguousArtifactError{Name: name, Matches: candidates}
	}

	options := formatContractOptions(candidates)

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, Enter to select"),
	}

	promptSelect := promptui.Select{
		Label:             fmt.Sprintf("Multiple artifacts named %s, select one", name),
		Items:             options,
		Templates:         templates,
		Size:              10,
		StartInSearchMode: true,
		Searcher:          createFuzzySearchFunc(options),
	}

	index, _, err := promptSelect.Run()
	if err != nil {
		return nil, fmt.Errorf("selection cancelled: %w", err)
	}

	return candidates[index], nil
}

// Confirm asks a yes/no question. Non-interactive mode answers yes.
func (s *SelectorAdapter) Confirm(ctx context.Context, message string) (bool, error) {
	if s.config.NonInteractive {
		return true, nil
	}

	prompt := promptui.Prompt{
		Label:     message,
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		if errors.Is(err, promptui.ErrInterrupt) {
			return false, context.Canceled
		}
		return false, fmt.Errorf("confirmation failed: %w", err)
	}
	return true, nil
}

// formatContractOptions creates display strings for artifact selection
func formatContractOptions(candidates []*domain.ContractArtifact) []string {
	options := make([]string, len(candidates))
	for i, artifact := range candidates {
		contractName := color.New(color.FgWhite, color.Bold).Sprint(artifact.Name)
		source := color.New(color.FgBlue).Sprint(artifact.SourceName)
		options[i] = fmt.Sprintf("%s (%s)", contractName, source)
		if artifact.CompilerVersion != "" {
			options[i] += color.New(color.Faint).Sprintf(" solc %s", artifact.CompilerVersion)
		}
	}
	return options
}

// createFuzzySearchFunc creates a fuzzy search function for promptui
func createFuzzySearchFunc(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		// Empty search shows all items
		if input == "" {
			return true
		}

		input = strings.ToLower(input)
		item := strings.ToLower(items[index])

		if strings.Contains(item, input) {
			return true
		}

		return len(fuzzy.Find(input, []string{item})) > 0
	}
}

// Ensure the adapter implements the interfaces
var (
	_ usecase.ContractSelector = (*SelectorAdapter)(nil)
	_ usecase.Confirmer        = (*SelectorAdapter)(nil)
)
