package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// PlansRenderer renders plan listings and plan details
type PlansRenderer struct {
	out io.Writer
}

// NewPlansRenderer creates a new plans renderer
func NewPlansRenderer(out io.Writer) *PlansRenderer {
	return &PlansRenderer{out: out}
}

// RenderList renders the available plans
func (r *PlansRenderer) RenderList(plans []usecase.PlanSummary) error {
	if len(plans) == 0 {
		fmt.Fprintln(r.out, "No plans available")
		return nil
	}

	t := newTable()
	t.AppendHeader(table.Row{"Plan", "Steps", "Deploys", "Description"})
	for _, p := range plans {
		t.AppendRow(table.Row{color.New(color.Bold).Sprint(p.Name), p.Steps, p.Deploys, p.Description})
	}
	fmt.Fprintln(r.out, t.Render())
	return nil
}

// Render renders the ordered steps of one plan
func (r *PlansRenderer) Render(result *usecase.ShowPlanResult) error {
	plan := result.Plan

	fmt.Fprintf(r.out, "%s\n", color.New(color.Bold).Sprintf("Plan %s", plan.Name))
	if plan.Description != "" {
		fmt.Fprintf(r.out, "%s\n", plan.Description)
	}
	fmt.Fprintln(r.out)

	for i, step := range plan.Steps {
		fmt.Fprintf(r.out, "%3d. %s\n", i+1, r.describe(step))
	}
	return nil
}

func (r *PlansRenderer) describe(step domain.Step) string {
	kind := color.New(kindColor(step.Kind)).Sprintf("%-6s", step.Kind)
	switch step.Kind {
	case domain.StepDeploy:
		line := fmt.Sprintf("%s %s(%s)", kind, step.Artifact, formatArgs(step.Args))
		if step.ID != "" && step.ID != step.Artifact {
			line += color.New(color.FgHiBlack).Sprintf(" as %s", step.ID)
		}
		return line
	case domain.StepCall:
		return fmt.Sprintf("%s %s.%s(%s)", kind, step.Target, step.Method, formatArgs(step.Args))
	default:
		return fmt.Sprintf("%s %s", kind, step.Target)
	}
}

func formatArgs(args []domain.Argument) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		if arg.IsRef() {
			parts[i] = color.New(color.FgCyan).Sprint(arg.String())
		} else {
			parts[i] = arg.String()
		}
	}
	return strings.Join(parts, ", ")
}

func kindColor(kind domain.StepKind) color.Attribute {
	switch kind {
	case domain.StepDeploy:
		return color.FgGreen
	case domain.StepVerify:
		return color.FgBlue
	default:
		return color.FgYellow
	}
}

var _ Renderer[*usecase.ShowPlanResult] = (*PlansRenderer)(nil)
