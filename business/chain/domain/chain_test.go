package domain_test

import (
	"testing"

	chaindomain "github.com/vantos/triarb/business/chain/domain"
	solverdomain "github.com/vantos/triarb/business/solver/domain"
)

func twoStepChain() *chaindomain.Chain {
	instructions := []solverdomain.Instruction{
		{Symbol: "BTCUSD", IsBuy: true},
		{Symbol: "ETHBTC", IsBuy: false},
	}
	return chaindomain.NewChain(instructions, 0)
}

// TestChain_CompensationTargets_SkipsFilledAndTerminalSteps covers
// spec.md §8 scenario 5: once step 0 is Filled and step 1 fails before
// reaching a terminal state, compensation must target only steps still
// live (Submitted/AckReq/AckOrder) and must leave the filled step alone.
func TestChain_CompensationTargets_SkipsFilledAndTerminalSteps(t *testing.T) {
	c := twoStepChain()
	c.Steps[0].State = chaindomain.StepFilled
	c.Steps[1].State = chaindomain.StepAckReq

	targets := c.CompensationTargets()
	if len(targets) != 1 {
		t.Fatalf("expected exactly one compensation target, got %d", len(targets))
	}
	if targets[0].Index != 1 {
		t.Fatalf("expected step 1 to be the compensation target, got step %d", targets[0].Index)
	}
}

func TestChain_CompensationTargets_EmptyWhenAllTerminal(t *testing.T) {
	c := twoStepChain()
	c.Steps[0].State = chaindomain.StepFilled
	c.Steps[1].State = chaindomain.StepFailed

	if targets := c.CompensationTargets(); len(targets) != 0 {
		t.Fatalf("expected no compensation targets once every step is terminal, got %d", len(targets))
	}
}

func TestChain_CurrentStep_AdvancesOnlyAfterPriorFilled(t *testing.T) {
	c := twoStepChain()
	if cur := c.CurrentStep(); cur == nil || cur.Index != 0 {
		t.Fatalf("expected step 0 to be current initially")
	}

	c.Steps[0].State = chaindomain.StepSubmitted
	if cur := c.CurrentStep(); cur == nil || cur.Index != 0 {
		t.Fatalf("expected step 0 to remain current while non-terminal")
	}

	c.Steps[0].State = chaindomain.StepFilled
	if cur := c.CurrentStep(); cur == nil || cur.Index != 1 {
		t.Fatalf("expected step 1 to become current once step 0 is filled")
	}

	c.Steps[1].State = chaindomain.StepFilled
	if cur := c.CurrentStep(); cur != nil {
		t.Fatalf("expected no current step once every step is filled")
	}
	if !c.AllFilled() {
		t.Fatal("expected AllFilled to report true")
	}
}

func TestStepState_IsTerminal(t *testing.T) {
	terminal := []chaindomain.StepState{chaindomain.StepFilled, chaindomain.StepCanceled, chaindomain.StepFailed}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("expected state %v to be terminal", s)
		}
	}
	nonTerminal := []chaindomain.StepState{chaindomain.StepPending, chaindomain.StepSubmitted, chaindomain.StepAckReq, chaindomain.StepAckOrder}
	for _, s := range nonTerminal {
		if s.IsTerminal() {
			t.Errorf("expected state %v to be non-terminal", s)
		}
	}
}
