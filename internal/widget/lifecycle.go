// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

import (
	"context"
	"log/slog"

	"github.com/qmuntal/stateless"
)

// Phase is the initialization lifecycle state.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseInitializing Phase = "initializing"
	PhaseReady        Phase = "ready"
	PhaseFailed       Phase = "failed" // terminal
)

type trigger string

const (
	triggerStart   trigger = "start"
	triggerSucceed trigger = "succeed"
	triggerFail    trigger = "fail"
)

// lifecycle guards Init: idle -> initializing -> ready | failed.
type lifecycle struct {
	fsm *stateless.StateMachine
}

func newLifecycle(logger *slog.Logger) *lifecycle {
	fsm := stateless.NewStateMachine(PhaseIdle)

	fsm.Configure(PhaseIdle).
		Permit(triggerStart, PhaseInitializing)

	fsm.Configure(PhaseInitializing).
		Permit(triggerSucceed, PhaseReady).
		Permit(triggerFail, PhaseFailed)

	fsm.Configure(PhaseReady)
	fsm.Configure(PhaseFailed)

	fsm.OnTransitioned(func(_ context.Context, t stateless.Transition) {
		logger.Debug("widget lifecycle", "from", t.Source, "to", t.Destination, "trigger", t.Trigger)
	})

	return &lifecycle{fsm: fsm}
}

// start moves idle -> initializing. It fails in every other phase.
func (l *lifecycle) start() error {
	return l.fsm.Fire(triggerStart)
}

func (l *lifecycle) succeed() {
	_ = l.fsm.Fire(triggerSucceed)
}

func (l *lifecycle) fail() {
	_ = l.fsm.Fire(triggerFail)
}

func (l *lifecycle) phase() Phase {
	return l.fsm.MustState().(Phase)
}
