package forecast

import (
	"fmt"
	"sync"
)

// SelectionKey identifies which series a request was made for.
type SelectionKey struct {
	UploadID  int64
	ProjectID string
	Period    Period
}

func (k SelectionKey) String() string {
	return fmt.Sprintf("%d/%s/%s", k.UploadID, k.ProjectID, k.Period)
}

// Ticket tags an in-flight request.
type Ticket struct {
	Key SelectionKey
	Gen uint64
}

// Guard drops responses that arrive after a newer selection was requested.
// The zero value is ready to use.
type Guard struct {
	mu  sync.Mutex
	gen uint64
	key SelectionKey
}

// Begin records key as the current selection and returns the ticket its
// response must present.
func (g *Guard) Begin(key SelectionKey) Ticket {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen++
	g.key = key
	return Ticket{Key: key, Gen: g.gen}
}

// Current reports whether t belongs to the latest request.
func (g *Guard) Current(t Ticket) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return t.Gen == g.gen && t.Key == g.key
}
