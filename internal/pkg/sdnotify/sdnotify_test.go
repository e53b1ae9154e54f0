package sdnotify

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	mu     sync.Mutex
	states []string
	err    error
}

func (r *recorder) send(state string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
	return r.err == nil, r.err
}

func TestNotifier_Messages(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	n := &Notifier{send: rec.send}

	n.Ready()
	n.Status("draining: 3 in flight")
	n.Stopping()

	assert.Equal(t, []string{"READY=1", "STATUS=draining: 3 in flight", "STOPPING=1"}, rec.states)
}

func TestNotifier_SendErrorIsSwallowed(t *testing.T) {
	t.Parallel()

	rec := &recorder{err: errors.New("socket gone")}
	n := &Notifier{send: rec.send}

	assert.NotPanics(t, n.Ready)
	assert.Len(t, rec.states, 1)
}

func TestNotifier_NilSafe(t *testing.T) {
	t.Parallel()

	var n *Notifier
	assert.NotPanics(t, func() {
		n.Ready()
		n.Stopping()
		n.Status("x")
	})
}

func TestNew_WithoutSocket(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")

	assert.NotPanics(t, New().Ready)
}
