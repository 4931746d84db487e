// Package orchestrator drives a refinement: one call to the selected
// provider, an optional single clarification round, and the history write.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/HexSleeves/prep/internal/bus"
	"github.com/HexSleeves/prep/internal/provider"
	"github.com/HexSleeves/prep/internal/refine"
)

// Prompter collects one answer per clarification question.
type Prompter interface {
	Ask(ctx context.Context, questions []string) ([]string, error)
}

// Recorder is the part of the history store the orchestrator writes to.
type Recorder interface {
	Add(ctx context.Context, original, refined, provider, model string) (int64, error)
	Prune(ctx context.Context, maxEntries int) (int64, error)
}

// Factory builds the provider for a resolved identity.
type Factory func(provider.Identity) (provider.Provider, error)

// HistorySettings controls whether and how results are recorded.
// MaxEntries <= 0 disables pruning.
type HistorySettings struct {
	Enabled    bool
	MaxEntries int
}

// Settings is the resolved configuration for one run.
type Settings struct {
	Identity    provider.Identity
	Interactive bool
	History     HistorySettings
}

// Input is what the user asked for.
type Input struct {
	Prompt  string
	Context string
}

// Result is the final outcome of a run.
type Result struct {
	Response  *refine.Response
	Rounds    int
	Provider  string
	Model     string
	HistoryID int64 // 0 when nothing was recorded
}

type state int

const (
	stateInitial state = iota
	stateClarifying
	stateDone
)

type Orchestrator struct {
	factory  Factory
	prompter Prompter
	recorder Recorder
	bus      *bus.MessageBus
	logger   *log.Logger
}

type Option func(*Orchestrator)

func WithFactory(f Factory) Option { return func(o *Orchestrator) { o.factory = f } }
func WithPrompter(p Prompter) Option { return func(o *Orchestrator) { o.prompter = p } }
func WithRecorder(r Recorder) Option { return func(o *Orchestrator) { o.recorder = r } }
func WithBus(b *bus.MessageBus) Option { return func(o *Orchestrator) { o.bus = b } }
func WithLogger(l *log.Logger) Option { return func(o *Orchestrator) { o.logger = l } }

func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		factory: func(id provider.Identity) (provider.Provider, error) { return provider.New(id) },
		logger:  log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run refines in.Prompt. It calls the provider at most twice and never
// retries; any provider failure aborts the run before history is touched.
func (o *Orchestrator) Run(ctx context.Context, settings Settings, in Input) (*Result, error) {
	if strings.TrimSpace(in.Prompt) == "" {
		return nil, errors.New("prompt is empty")
	}

	p, err := o.factory(settings.Identity)
	if err != nil {
		return nil, err
	}

	req := refine.Request{Prompt: in.Prompt, Context: in.Context}
	interactive := settings.Interactive && o.prompter != nil

	var resp *refine.Response
	rounds := 0
	for st := stateInitial; st != stateDone; {
		switch st {
		case stateInitial:
			rounds++
			resp, err = o.call(ctx, p, req, rounds)
			if err != nil {
				return nil, err
			}
			if !resp.WantsClarification() {
				st = stateDone
				continue
			}
			o.publish(bus.MsgClarificationRequested, p, rounds, bus.ClarificationRequested{Questions: resp.Questions})

			if !interactive {
				o.logger.Printf("[orchestrator] non-interactive, skipping %d clarification question(s)", len(resp.Questions))
				o.publish(bus.MsgClarificationSkipped, p, rounds, bus.ClarificationRequested{Questions: resp.Questions})
				st = stateDone
				continue
			}

			answers, err := o.prompter.Ask(ctx, resp.Questions)
			if err != nil {
				return nil, fmt.Errorf("collect clarification answers: %w", err)
			}
			summary, err := refine.BuildClarificationSummary(resp.Questions, answers)
			if err != nil {
				return nil, err
			}
			req.Clarification = summary
			st = stateClarifying

		case stateClarifying:
			// The second answer is final even if it asks again.
			rounds++
			resp, err = o.call(ctx, p, req, rounds)
			if err != nil {
				return nil, err
			}
			st = stateDone
		}
	}

	result := &Result{Response: resp, Rounds: rounds, Provider: p.Name(), Model: p.Model()}
	if settings.History.Enabled && o.recorder != nil {
		result.HistoryID = o.record(ctx, p, in.Prompt, resp.RefinedPrompt, settings.History.MaxEntries)
	}
	return result, nil
}

func (o *Orchestrator) call(ctx context.Context, p provider.Provider, req refine.Request, round int) (*refine.Response, error) {
	o.logger.Printf("[orchestrator] round %d: calling %s (%s)", round, p.Name(), p.Model())
	o.publish(bus.MsgRefineStarted, p, round, bus.RefineStarted{Model: p.Model(), Clarification: req.IsClarification()})

	resp, err := p.Refine(ctx, req)
	if err != nil {
		o.logger.Printf("[orchestrator] round %d failed: %v", round, err)
		o.publish(bus.MsgRefineFailed, p, round, bus.RefineFailed{Err: err})
		return nil, err
	}

	o.publish(bus.MsgRefineFinished, p, round, bus.RefineFinished{
		NeedsClarification: resp.NeedsClarification,
		Questions:          len(resp.Questions),
	})
	return resp, nil
}

// record stores the result and applies retention. Failures are reported
// but never fail the refinement.
func (o *Orchestrator) record(ctx context.Context, p provider.Provider, original, refined string, maxEntries int) int64 {
	id, err := o.recorder.Add(ctx, original, refined, p.Name(), p.Model())
	if err != nil {
		o.logger.Printf("[history] save failed: %v", err)
		o.publish(bus.MsgHistoryError, p, 0, bus.HistoryError{Err: err})
		return 0
	}
	o.publish(bus.MsgHistorySaved, p, 0, bus.HistorySaved{ID: id})

	if maxEntries > 0 {
		n, err := o.recorder.Prune(ctx, maxEntries)
		if err != nil {
			o.logger.Printf("[history] prune failed: %v", err)
			o.publish(bus.MsgHistoryError, p, 0, bus.HistoryError{Err: err})
		} else if n > 0 {
			o.logger.Printf("[history] pruned %d old entries", n)
		}
	}
	return id
}

func (o *Orchestrator) publish(t bus.MsgType, p provider.Provider, round int, payload any) {
	if o.bus == nil {
		return
	}
	o.bus.Publish(bus.Message{Type: t, Provider: p.Name(), Round: round, Payload: payload})
}
