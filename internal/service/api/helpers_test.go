package api

import (
	"testing"

	"github.com/darkkaiser/watch-relay/internal/service/relay"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// stubProvider 고정 값을 반환하는 StatusProvider입니다.
type stubProvider struct {
	state relay.State
	stats relay.Snapshot
}

func (s stubProvider) State() relay.State    { return s.state }
func (s stubProvider) QueueLen() int         { return 2 }
func (s stubProvider) QueueCap() int         { return 1000 }
func (s stubProvider) Stats() relay.Snapshot { return s.stats }
