package event

import (
	"slices"
	"sync"

	"github.com/erp/crm/internal/domain/shared"
)

// subscription binds a handler to the event types it receives. An empty
// type set matches every event.
type subscription struct {
	handler shared.EventHandler
	types   map[string]struct{}
}

func (s *subscription) matches(eventType string) bool {
	if len(s.types) == 0 {
		return true
	}
	_, ok := s.types[eventType]
	return ok
}

// Subscriptions keeps handlers in subscription order
type Subscriptions struct {
	mu   sync.RWMutex
	subs []*subscription
}

// NewSubscriptions creates an empty subscription list
func NewSubscriptions() *Subscriptions {
	return &Subscriptions{}
}

// Add subscribes handler to eventTypes, merging with an existing
// subscription of the same handler. No types means every event.
func (s *Subscriptions) Add(handler shared.EventHandler, eventTypes ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(handler)
	if i < 0 {
		sub := &subscription{handler: handler}
		if len(eventTypes) > 0 {
			sub.types = make(map[string]struct{}, len(eventTypes))
		}
		for _, t := range eventTypes {
			sub.types[t] = struct{}{}
		}
		s.subs = append(s.subs, sub)
		return
	}

	sub := s.subs[i]
	if len(sub.types) == 0 {
		return
	}
	if len(eventTypes) == 0 {
		sub.types = nil
		return
	}
	for _, t := range eventTypes {
		sub.types[t] = struct{}{}
	}
}

// Remove drops the handler's subscription
func (s *Subscriptions) Remove(handler shared.EventHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = slices.DeleteFunc(s.subs, func(sub *subscription) bool {
		return sub.handler == handler
	})
}

// Matching returns the handlers receiving eventType in subscription order
func (s *Subscriptions) Matching(eventType string) []shared.EventHandler {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []shared.EventHandler
	for _, sub := range s.subs {
		if sub.matches(eventType) {
			out = append(out, sub.handler)
		}
	}
	return out
}

// Len returns the number of subscribed handlers
func (s *Subscriptions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// EventTypes lists the event types named by at least one subscription, sorted
func (s *Subscriptions) EventTypes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var types []string
	for _, sub := range s.subs {
		for t := range sub.types {
			if !slices.Contains(types, t) {
				types = append(types, t)
			}
		}
	}
	slices.Sort(types)
	return types
}

func (s *Subscriptions) indexOf(handler shared.EventHandler) int {
	return slices.IndexFunc(s.subs, func(sub *subscription) bool {
		return sub.handler == handler
	})
}
