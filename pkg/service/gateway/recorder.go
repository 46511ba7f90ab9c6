package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slotcast-dev/slotcast/pkg/domain/interfaces"
	"github.com/slotcast-dev/slotcast/pkg/domain/types"
)

// SentMessage is one message captured by the Recorder.
type SentMessage struct {
	To        types.Address
	Body      string
	MediaURLs []string
}

// Recorder is an in-memory gateway for development and tests. It records
// every send and can be told to reject specific addresses.
type Recorder struct {
	mu     sync.Mutex
	sent   []SentMessage
	reject map[types.Address]bool
	seq    int
}

var _ interfaces.Gateway = &Recorder{}

// NewRecorder creates an empty recording gateway.
func NewRecorder() *Recorder {
	return &Recorder{
		reject: make(map[types.Address]bool),
	}
}

// RejectAddress makes future sends to the address fail with ErrGatewayRejected.
func (r *Recorder) RejectAddress(addr types.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reject[addr] = true
}

// Send records the message and returns a synthetic delivery handle.
func (r *Recorder) Send(ctx context.Context, to types.Address, body string, mediaURLs []string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.reject[to] {
		return "", goerr.Wrap(interfaces.ErrGatewayRejected, "address rejected", goerr.V("to", to))
	}

	r.seq++
	r.sent = append(r.sent, SentMessage{To: to, Body: body, MediaURLs: mediaURLs})
	return fmt.Sprintf("SM%08d", r.seq), nil
}

// Sent returns a copy of all recorded messages.
func (r *Recorder) Sent() []SentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]SentMessage, len(r.sent))
	copy(out, r.sent)
	return out
}

// SentTo returns the messages delivered to one address.
func (r *Recorder) SentTo(addr types.Address) []SentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []SentMessage
	for _, msg := range r.sent {
		if msg.To == addr {
			out = append(out, msg)
		}
	}
	return out
}
