package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/usecase"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// VerifyRenderer handles rendering of verification results
type VerifyRenderer struct {
	out io.Writer
}

// NewVerifyRenderer creates a new verify renderer
func NewVerifyRenderer(out io.Writer) *VerifyRenderer {
	return &VerifyRenderer{out: out}
}

// Render renders the outcome of a standalone verification
func (r *VerifyRenderer) Render(result *usecase.VerifyContractResult) error {
	outcome := result.Outcome

	fmt.Fprintf(r.out, "%s %s at %s on %s\n",
		r.statusIcon(outcome.Status),
		color.New(color.Bold).Sprint(result.Artifact.Name),
		outcome.Address,
		result.Network,
	)

	caser := cases.Title(language.English)
	fmt.Fprintf(r.out, "  Status:  %s\n", caser.String(string(outcome.Status)))
	if outcome.GUID != "" {
		fmt.Fprintf(r.out, "  GUID:    %s\n", outcome.GUID)
	}
	if outcome.Message != "" {
		fmt.Fprintf(r.out, "  Message: %s\n", outcome.Message)
	}
	if outcome.URL != "" {
		fmt.Fprintf(r.out, "  URL:     %s\n", color.New(color.FgBlue, color.Underline).Sprint(outcome.URL))
	}
	if outcome.Status == domain.VerificationSubmitted && outcome.GUID != "" {
		fmt.Fprintf(r.out, "\nCheck progress with: sling verify status %s\n", outcome.GUID)
	}
	return nil
}

// RenderStatus renders the explorer's answer to a status query
func (r *VerifyRenderer) RenderStatus(result *usecase.VerificationStatusResult) error {
	switch {
	case result.Verified:
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Verified: %s", result.Message)))
	case result.Pending:
		color.New(color.FgYellow).Fprintf(r.out, "⏳ Pending: %s\n", result.Message)
	default:
		fmt.Fprintln(r.out, FormatError(result.Message))
	}
	return nil
}

func (r *VerifyRenderer) statusIcon(status domain.VerificationStatus) string {
	switch status {
	case domain.VerificationVerified, domain.VerificationSubmitted:
		return color.New(color.FgGreen).Sprint("✔︎")
	case domain.VerificationFailed:
		return color.New(color.FgRed).Sprint("✗")
	default:
		return color.New(color.FgHiBlack).Sprint("⊘")
	}
}

var _ Renderer[*usecase.VerifyContractResult] = (*VerifyRenderer)(nil)
