package curtail

import (
	"fmt"
	"sync"

	"github.com/voltbus/curtaild/core/model"
)

// HistoryKey identifies a (charger, connector) pair in the history store.
func HistoryKey(chargerID string, connectorID int) string {
	return fmt.Sprintf("%s-%d", chargerID, connectorID)
}

// History records every charge profile issued during the process lifetime,
// keyed per connector. It is append-only: entries are never evicted, only the
// most recent one is ever read back. Access is guarded so per-key append and
// read stay atomic if cycles are ever parallelised.
type History struct {
	mu       sync.RWMutex
	profiles map[string][]model.ChargeProfile
}

// NewHistory creates an empty history store.
func NewHistory() *History {
	return &History{profiles: map[string][]model.ChargeProfile{}}
}

// Record appends a dispatched profile under the given key.
func (h *History) Record(key string, p model.ChargeProfile) {
	h.mu.Lock()
	h.profiles[key] = append(h.profiles[key], p)
	h.mu.Unlock()
}

// Latest returns the most recently recorded profile for the key.
func (h *History) Latest(key string) (model.ChargeProfile, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	entries := h.profiles[key]
	if len(entries) == 0 {
		return model.ChargeProfile{}, false
	}
	return entries[len(entries)-1], true
}

// Len returns the number of profiles recorded for the key.
func (h *History) Len(key string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.profiles[key])
}
