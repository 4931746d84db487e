package bus

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMsgTypeConstants(t *testing.T) {
	tests := []struct {
		name     string
		msgType  MsgType
		expected string
	}{
		{"RefineStarted", MsgRefineStarted, "refine.started"},
		{"RefineFinished", MsgRefineFinished, "refine.finished"},
		{"RefineFailed", MsgRefineFailed, "refine.failed"},
		{"ClarificationRequested", MsgClarificationRequested, "clarification.requested"},
		{"ClarificationSkipped", MsgClarificationSkipped, "clarification.skipped"},
		{"HistorySaved", MsgHistorySaved, "history.saved"},
		{"HistoryError", MsgHistoryError, "history.error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.msgType) != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, tt.msgType)
			}
		})
	}
}

func TestNew(t *testing.T) {
	b := New(100)
	if b.maxHist != 100 {
		t.Errorf("Expected maxHist 100, got %d", b.maxHist)
	}
	if New(0).maxHist != 1000 {
		t.Error("Expected default maxHist for zero")
	}
	if New(-1).maxHist != 1000 {
		t.Error("Expected default maxHist for negative")
	}
}

// ---------------------------------------------------------------------------
// Subscribe / Unsubscribe
// ---------------------------------------------------------------------------

func TestSubscribeAndPublish(t *testing.T) {
	b := New(10)

	var got Message
	b.Subscribe(MsgRefineStarted, func(msg Message) { got = msg })

	b.Publish(Message{Type: MsgRefineStarted, Provider: "Ollama", Round: 1, Payload: RefineStarted{Model: "llama3.2"}})

	if got.Provider != "Ollama" || got.Round != 1 {
		t.Fatalf("unexpected message: %+v", got)
	}
	p, ok := got.Payload.(RefineStarted)
	if !ok || p.Model != "llama3.2" {
		t.Errorf("payload=%#v", got.Payload)
	}
	if got.Time.IsZero() {
		t.Error("Publish should stamp a zero Time")
	}
}

func TestPublishKeepsExplicitTime(t *testing.T) {
	b := New(10)
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	b.Publish(Message{Type: MsgHistorySaved, Time: at})
	if h := b.History(1); !h[0].Time.Equal(at) {
		t.Errorf("time=%v, want %v", h[0].Time, at)
	}
}

func TestSubscribeOnlyMatchingType(t *testing.T) {
	b := New(10)
	var count atomic.Int32
	b.Subscribe(MsgRefineFailed, func(msg Message) { count.Add(1) })

	b.Publish(Message{Type: MsgRefineStarted})
	b.Publish(Message{Type: MsgRefineFailed})

	if count.Load() != 1 {
		t.Errorf("Expected 1 call, got %d", count.Load())
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New(10)

	var count atomic.Int32
	sub := b.Subscribe(MsgRefineStarted, func(msg Message) { count.Add(1) })
	keep := b.Subscribe(MsgRefineStarted, func(msg Message) { count.Add(10) })
	defer keep.Unsubscribe()

	b.Publish(Message{Type: MsgRefineStarted})
	if count.Load() != 11 {
		t.Fatalf("Expected 11 before unsubscribe, got %d", count.Load())
	}

	sub.Unsubscribe()
	sub.Unsubscribe() // idempotent

	b.Publish(Message{Type: MsgRefineStarted})
	if count.Load() != 21 {
		t.Errorf("Expected only the remaining handler to fire, got %d", count.Load())
	}
}

func TestSubscribeAll(t *testing.T) {
	b := New(10)

	var types []MsgType
	sub := b.SubscribeAll(func(msg Message) { types = append(types, msg.Type) })

	b.Publish(Message{Type: MsgRefineStarted})
	b.Publish(Message{Type: MsgHistoryError})
	sub.Unsubscribe()
	b.Publish(Message{Type: MsgRefineFinished})

	if len(types) != 2 || types[0] != MsgRefineStarted || types[1] != MsgHistoryError {
		t.Errorf("types=%v", types)
	}
}

func TestPublishOrder(t *testing.T) {
	b := New(10)

	var order []int
	b.SubscribeAll(func(msg Message) { order = append(order, 3) })
	b.Subscribe(MsgRefineStarted, func(msg Message) { order = append(order, 1) })
	b.Subscribe(MsgRefineStarted, func(msg Message) { order = append(order, 2) })

	b.Publish(Message{Type: MsgRefineStarted})

	// Specific handlers run before wildcard ones.
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("Expected order [1,2,3], got %v", order)
	}
}

// ---------------------------------------------------------------------------
// History
// ---------------------------------------------------------------------------

func TestHistory(t *testing.T) {
	b := New(5)

	if len(b.History(5)) != 0 {
		t.Error("Expected empty history")
	}

	for i := 1; i <= 8; i++ {
		b.Publish(Message{Type: MsgRefineStarted, Round: i})
	}

	all := b.History(0)
	if len(all) != 5 {
		t.Fatalf("Expected history capped at 5, got %d", len(all))
	}
	if all[0].Round != 4 || all[4].Round != 8 {
		t.Errorf("Expected rounds 4..8, got %d..%d", all[0].Round, all[4].Round)
	}

	last := b.History(2)
	if len(last) != 2 || last[0].Round != 7 {
		t.Errorf("History(2)=%+v", last)
	}
	if len(b.History(-1)) != 5 {
		t.Error("Expected all messages for negative n")
	}
}

// ---------------------------------------------------------------------------
// Robustness
// ---------------------------------------------------------------------------

func TestPanicRecovery(t *testing.T) {
	values := []any{"handler panic", errors.New("handler error"), 42}

	for _, v := range values {
		b := New(10)
		var after atomic.Bool
		b.Subscribe(MsgRefineFailed, func(msg Message) { panic(v) })
		b.SubscribeAll(func(msg Message) { after.Store(true) })

		b.Publish(Message{Type: MsgRefineFailed})

		if !after.Load() {
			t.Errorf("panic(%v) stopped later handlers", v)
		}
	}
}

func TestBusConcurrency(t *testing.T) {
	b := New(1000)

	var received atomic.Int32
	for i := 0; i < 10; i++ {
		b.Subscribe(MsgRefineFinished, func(msg Message) { received.Add(1) })
	}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			b.Publish(Message{Type: MsgRefineFinished})
		}()
		go func() {
			defer wg.Done()
			sub := b.Subscribe(MsgRefineStarted, func(msg Message) {})
			b.History(10)
			sub.Unsubscribe()
		}()
	}
	wg.Wait()

	if received.Load() != 100*10 {
		t.Errorf("Expected %d handler calls, got %d", 100*10, received.Load())
	}
}
