package domain

import (
	"fmt"
	"strings"
)

// StepKind identifies what a plan step does
type StepKind string

const (
	StepDeploy StepKind = "deploy"
	StepVerify StepKind = "verify"
	StepCall   StepKind = "call"
)

// Step is one operation of a deployment plan.
//
// Deploy steps use Artifact and Args, and register their output under ID
// (defaults to Artifact). Verify steps name a deployed ID in Target. Call
// steps invoke Method on the deployed Target with Args.
type Step struct {
	Kind     StepKind   `json:"kind"`
	ID       string     `json:"id,omitempty"`
	Artifact string     `json:"artifact,omitempty"`
	Target   string     `json:"target,omitempty"`
	Method   string     `json:"method,omitempty"`
	Args     []Argument `json:"args,omitempty"`
}

// Deploy creates a deploy step whose output is registered under the artifact name
func Deploy(artifact string, args ...Argument) Step {
	return Step{Kind: StepDeploy, ID: artifact, Artifact: artifact, Args: args}
}

// Verify creates a verify step for an earlier deployment
func Verify(target string) Step {
	return Step{Kind: StepVerify, Target: target}
}

// Call creates a configuration call on an earlier deployment
func Call(target, method string, args ...Argument) Step {
	return Step{Kind: StepCall, Target: target, Method: method, Args: args}
}

// OutputName returns the logical name a deploy step registers
func (s Step) OutputName() string {
	if s.ID != "" {
		return s.ID
	}
	return s.Artifact
}

// Label returns a short human-readable description of the step
func (s Step) Label() string {
	switch s.Kind {
	case StepDeploy:
		if s.ID != "" && s.ID != s.Artifact {
			return fmt.Sprintf("deploy %s as %s", s.Artifact, s.ID)
		}
		return "deploy " + s.Artifact
	case StepVerify:
		return "verify " + s.Target
	case StepCall:
		return fmt.Sprintf("call %s.%s", s.Target, s.Method)
	default:
		return string(s.Kind)
	}
}

// Refs returns every logical name the step depends on, in argument order
func (s Step) Refs() []string {
	var refs []string
	if s.Kind == StepVerify || s.Kind == StepCall {
		refs = append(refs, s.Target)
	}
	for _, arg := range s.Args {
		if arg.IsRef() {
			refs = append(refs, arg.Ref)
		}
	}
	return refs
}

// Plan is an ordered list of steps. Each step may depend only on deploy steps
// declared strictly before it.
type Plan struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Steps       []Step `json:"steps"`
}

// DeploySteps returns the deploy steps in declared order
func (p *Plan) DeploySteps() []Step {
	var steps []Step
	for _, step := range p.Steps {
		if step.Kind == StepDeploy {
			steps = append(steps, step)
		}
	}
	return steps
}

// Validate checks the plan is well formed: known kinds, required fields,
// unique deploy ids and no forward or unknown references.
func (p *Plan) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("plan name is required")
	}
	if len(p.Steps) == 0 {
		return fmt.Errorf("plan %s has no steps", p.Name)
	}

	deployed := make(map[string]bool)
	for i, step := range p.Steps {
		label := fmt.Sprintf("%d (%s)", i+1, step.Label())

		switch step.Kind {
		case StepDeploy:
			if step.Artifact == "" {
				return fmt.Errorf("step %d: deploy step must name an artifact", i+1)
			}
		case StepVerify:
			if step.Target == "" {
				return fmt.Errorf("step %d: verify step must name a target", i+1)
			}
		case StepCall:
			if step.Target == "" || step.Method == "" {
				return fmt.Errorf("step %d: call step must name a target and a method", i+1)
			}
		default:
			return fmt.Errorf("step %d: unknown step kind %q", i+1, step.Kind)
		}

		for _, ref := range step.Refs() {
			if !deployed[ref] {
				return &DependencyUnresolvedError{Ref: ref, Step: label}
			}
		}

		if step.Kind == StepDeploy {
			name := step.OutputName()
			if deployed[name] {
				return fmt.Errorf("step %d: %s is deployed more than once, set a distinct id", i+1, name)
			}
			deployed[name] = true
		}
	}

	return nil
}

// WithoutVerification returns a copy of the plan with verify steps removed
func (p *Plan) WithoutVerification() *Plan {
	out := &Plan{Name: p.Name, Description: p.Description}
	for _, step := range p.Steps {
		if step.Kind != StepVerify {
			out.Steps = append(out.Steps, step)
		}
	}
	return out
}
