// Package bus is a small synchronous pub/sub used to report refinement
// progress to whoever is watching (spinner, verbose log, tests).
package bus

import (
	"log"
	"sync"
	"time"
)

type MsgType string

const (
	MsgRefineStarted          MsgType = "refine.started"
	MsgRefineFinished         MsgType = "refine.finished"
	MsgRefineFailed           MsgType = "refine.failed"
	MsgClarificationRequested MsgType = "clarification.requested"
	MsgClarificationSkipped   MsgType = "clarification.skipped"
	MsgHistorySaved           MsgType = "history.saved"
	MsgHistoryError           MsgType = "history.error"
)

const wildcard MsgType = "*"

type Message struct {
	Type     MsgType   `json:"type"`
	Provider string    `json:"provider,omitempty"`
	Round    int       `json:"round,omitempty"`
	Payload  any       `json:"payload,omitempty"`
	Time     time.Time `json:"time"`
}

// Payloads carried by the message types above.
type (
	RefineStarted struct {
		Model         string
		Clarification bool
	}
	RefineFinished struct {
		NeedsClarification bool
		Questions          int
	}
	RefineFailed struct {
		Err error
	}
	ClarificationRequested struct {
		Questions []string
	}
	HistorySaved struct {
		ID int64
	}
	HistoryError struct {
		Err error
	}
)

type Handler func(msg Message)

type entry struct {
	id uint64
	h  Handler
}

// Subscription removes its handler when Unsubscribe is called.
type Subscription struct {
	bus     *MessageBus
	msgType MsgType
	id      uint64
	once    sync.Once
}

func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.bus.remove(s.msgType, s.id)
	})
}

type MessageBus struct {
	mu       sync.RWMutex
	handlers map[MsgType][]entry
	nextID   uint64
	history  []Message
	maxHist  int
}

func New(maxHistory int) *MessageBus {
	if maxHistory <= 0 {
		maxHistory = 1000
	}
	return &MessageBus{
		handlers: make(map[MsgType][]entry),
		maxHist:  maxHistory,
	}
}

func (b *MessageBus) Subscribe(msgType MsgType, h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.handlers[msgType] = append(b.handlers[msgType], entry{id: b.nextID, h: h})
	return &Subscription{bus: b, msgType: msgType, id: b.nextID}
}

func (b *MessageBus) SubscribeAll(h Handler) *Subscription {
	return b.Subscribe(wildcard, h)
}

func (b *MessageBus) remove(msgType MsgType, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	entries := b.handlers[msgType]
	for i, e := range entries {
		if e.id == id {
			b.handlers[msgType] = append(entries[:i:i], entries[i+1:]...)
			return
		}
	}
}

// Publish delivers msg to type subscribers first, then to wildcard
// subscribers, on the caller's goroutine. A zero Time is stamped.
func (b *MessageBus) Publish(msg Message) {
	if msg.Time.IsZero() {
		msg.Time = time.Now()
	}

	b.mu.Lock()
	b.history = append(b.history, msg)
	if len(b.history) > b.maxHist {
		// Copy to a new slice to release the old backing array
		trimmed := make([]Message, b.maxHist)
		copy(trimmed, b.history[len(b.history)-b.maxHist:])
		b.history = trimmed
	}
	specific := append([]entry(nil), b.handlers[msg.Type]...)
	all := append([]entry(nil), b.handlers[wildcard]...)
	b.mu.Unlock()

	for _, e := range specific {
		dispatch(e.h, msg, "Handler")
	}
	for _, e := range all {
		dispatch(e.h, msg, "Wildcard handler")
	}
}

func dispatch(h Handler, msg Message, kind string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Bus] %s panicked for message type %s: %v", kind, msg.Type, r)
		}
	}()
	h(msg)
}

// History returns the last n messages, oldest first. n <= 0 means all.
func (b *MessageBus) History(n int) []Message {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if n <= 0 || n > len(b.history) {
		n = len(b.history)
	}
	start := len(b.history) - n
	result := make([]Message, n)
	copy(result, b.history[start:])
	return result
}
