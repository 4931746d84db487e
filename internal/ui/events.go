package ui

import (
	"github.com/HexSleeves/prep/internal/bus"
)

// Attach renders orchestrator progress from b. The returned func detaches.
func (u *UI) Attach(b *bus.MessageBus) func() {
	subs := []*bus.Subscription{
		b.Subscribe(bus.MsgRefineStarted, u.onStarted),
		b.Subscribe(bus.MsgRefineFinished, func(bus.Message) { u.StopSpinner() }),
		b.Subscribe(bus.MsgRefineFailed, func(bus.Message) { u.StopSpinner() }),
		b.Subscribe(bus.MsgClarificationSkipped, u.onSkipped),
		b.Subscribe(bus.MsgHistoryError, u.onHistoryError),
	}
	return func() {
		u.StopSpinner()
		for _, s := range subs {
			s.Unsubscribe()
		}
	}
}

func (u *UI) onStarted(msg bus.Message) {
	p, _ := msg.Payload.(bus.RefineStarted)
	if p.Clarification {
		u.StartSpinner("Refining with clarifications...")
		return
	}
	u.StartSpinner("Refining prompt with " + msg.Provider + " (" + p.Model + ")...")
}

func (u *UI) onSkipped(msg bus.Message) {
	p, _ := msg.Payload.(bus.ClarificationRequested)
	u.Warning("Clarification needed but running non-interactively.")
	u.Info("Questions the model wanted to ask:")
	for i, q := range p.Questions {
		u.println(fmtQuestion(i, q))
	}
	u.Info("Using the initial refined prompt. Re-run interactively for a better result.")
}

func (u *UI) onHistoryError(msg bus.Message) {
	p, _ := msg.Payload.(bus.HistoryError)
	u.Warning("Could not save to history: %v", p.Err)
}
