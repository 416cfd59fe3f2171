package workflow

import (
	"context"
	"errors"
	"testing"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateNoRequest, false},
		{StatePending, false},
		{StateApproved, true},
		{StateRejected, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"valid state", StateNoRequest, true},
		{"valid state", StateApproved, true},
		{"invalid state", State("INVALID"), false},
		{"empty state", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuilder_Configure(t *testing.T) {
	builder := NewBuilder()

	config := builder.Configure(StatePending)
	if config == nil {
		t.Fatal("Configure() returned nil")
	}

	config2 := builder.Configure(StatePending)
	if config != config2 {
		t.Error("Configure() should return same config for same state")
	}
}

func TestBuilder_ConfigurePanicsOnInvalidState(t *testing.T) {
	builder := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid state")
		}
	}()

	builder.Configure(State("INVALID"))
}

func TestBuilder_BuildPanicsOnInvalidInitialState(t *testing.T) {
	builder := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Build() should panic on invalid initial state")
		}
	}()

	builder.Build(State("INVALID"))
}

func buildTestMachine(initial State) StateMachine {
	builder := NewBuilder()

	builder.Configure(StateNoRequest).
		Permit(TriggerSubmit, StatePending)

	builder.Configure(StatePending).
		Permit(TriggerApprove, StateApproved).
		Permit(TriggerReject, StateRejected)

	return builder.Build(initial)
}

func TestStateMachine_Fire(t *testing.T) {
	machine := buildTestMachine(StateNoRequest)

	if err := machine.Fire(context.Background(), TriggerSubmit); err != nil {
		t.Fatalf("Fire(SUBMIT) error = %v", err)
	}
	if machine.State() != StatePending {
		t.Errorf("State() = %v, want %v", machine.State(), StatePending)
	}

	if err := machine.Fire(context.Background(), TriggerApprove); err != nil {
		t.Fatalf("Fire(APPROVE) error = %v", err)
	}
	if machine.State() != StateApproved {
		t.Errorf("State() = %v, want %v", machine.State(), StateApproved)
	}
}

func TestStateMachine_FireInvalidTransition(t *testing.T) {
	machine := buildTestMachine(StateNoRequest)

	err := machine.Fire(context.Background(), TriggerApprove)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire(APPROVE) from NO_REQUEST error = %v, want ErrInvalidTransition", err)
	}
	if machine.State() != StateNoRequest {
		t.Errorf("state changed on invalid transition: %v", machine.State())
	}
}

func TestStateMachine_TerminalStateRejectsAllTriggers(t *testing.T) {
	machine := buildTestMachine(StateApproved)

	for _, trigger := range []Trigger{TriggerSubmit, TriggerApprove, TriggerReject, TriggerEscalate} {
		if machine.CanFire(trigger) {
			t.Errorf("CanFire(%s) from terminal state should be false", trigger)
		}
		if err := machine.Fire(context.Background(), trigger); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Fire(%s) from terminal state error = %v, want ErrInvalidTransition", trigger, err)
		}
	}
}

func TestStateMachine_GuardedSelfTransition(t *testing.T) {
	allowed := true

	builder := NewBuilder()
	builder.Configure(StatePending).
		PermitIf(TriggerEscalate, StatePending, func(ctx context.Context) bool {
			return allowed
		})
	machine := builder.Build(StatePending)

	if err := machine.Fire(context.Background(), TriggerEscalate); err != nil {
		t.Fatalf("Fire(ESCALATE) with passing guard error = %v", err)
	}
	if machine.State() != StatePending {
		t.Errorf("State() = %v, want %v", machine.State(), StatePending)
	}

	allowed = false
	err := machine.Fire(context.Background(), TriggerEscalate)
	if !errors.Is(err, ErrGuardFailed) {
		t.Errorf("Fire(ESCALATE) with failing guard error = %v, want ErrGuardFailed", err)
	}
}

func TestStateMachine_PermittedTriggers(t *testing.T) {
	machine := buildTestMachine(StatePending)

	triggers := machine.PermittedTriggers()
	if len(triggers) != 2 {
		t.Fatalf("PermittedTriggers() = %v, want 2 entries", triggers)
	}

	seen := map[Trigger]bool{}
	for _, tr := range triggers {
		seen[tr] = true
	}
	if !seen[TriggerApprove] || !seen[TriggerReject] {
		t.Errorf("PermittedTriggers() = %v, want APPROVE and REJECT", triggers)
	}
}

func TestBuilder_BuildIsolatesConfiguration(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateNoRequest).Permit(TriggerSubmit, StatePending)

	machine := builder.Build(StateNoRequest)

	// Mutating the builder afterwards must not affect the built machine
	builder.Configure(StateNoRequest).Permit(TriggerApprove, StateApproved)

	if machine.CanFire(TriggerApprove) {
		t.Error("built machine should not see configuration added after Build()")
	}
}
