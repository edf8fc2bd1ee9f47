// Package domain contains the Order-Chain Coordinator's state machine.
package domain

import (
	"time"

	solverdomain "github.com/vantos/triarb/business/solver/domain"
)

// StepState is one step's lifecycle state, per spec.md §4.5.
type StepState int

const (
	StepPending StepState = iota
	StepSubmitted
	StepAckReq
	StepAckOrder
	StepFilled
	StepCanceled
	StepFailed
)

// IsTerminal reports whether a step state ends that step's lifecycle.
func (s StepState) IsTerminal() bool {
	switch s {
	case StepFilled, StepCanceled, StepFailed:
		return true
	default:
		return false
	}
}

// Step is one leg of a chain: the originating instruction plus its
// outbound/order-side tracking state.
type Step struct {
	Index        int
	Instruction  solverdomain.Instruction
	State        StepState
	ClientID     int64
	ClientIDDate string
	OrderID      int64
	SubmittedAt  time.Time
	Deadline     time.Time
}

// ChainState is the chain's overall lifecycle state.
type ChainState int

const (
	ChainPending ChainState = iota
	ChainRunning
	ChainCompensating
	ChainFailed
	ChainDone
)

// Chain is an ordered sequence of dependent order steps, per spec.md
// §4.5: step i+1 only submits once step i reaches Filled.
type Chain struct {
	Steps     []*Step
	State     ChainState
	StartedAt time.Time
	Deadline  time.Time // 60s hard cap on the whole chain
}

// NewChain builds a chain from a solver Solution's instructions, all
// steps starting Pending.
func NewChain(instructions []solverdomain.Instruction, stepTimeout time.Duration) *Chain {
	steps := make([]*Step, len(instructions))
	for i, instr := range instructions {
		steps[i] = &Step{Index: i, Instruction: instr, State: StepPending}
	}
	return &Chain{Steps: steps, State: ChainPending}
}

// CurrentStep returns the first non-terminal step, or nil if every
// step has reached a terminal state.
func (c *Chain) CurrentStep() *Step {
	for _, s := range c.Steps {
		if !s.State.IsTerminal() {
			return s
		}
	}
	return nil
}

// AllFilled reports whether every step reached Filled.
func (c *Chain) AllFilled() bool {
	for _, s := range c.Steps {
		if s.State != StepFilled {
			return false
		}
	}
	return true
}

// CompensationTargets returns every step still live enough to need a
// cancel request during compensation (spec.md §4.5).
func (c *Chain) CompensationTargets() []*Step {
	var out []*Step
	for _, s := range c.Steps {
		switch s.State {
		case StepSubmitted, StepAckReq, StepAckOrder:
			out = append(out, s)
		}
	}
	return out
}
