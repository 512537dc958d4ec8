package matching

import (
	"context"
	"sync"

	"github.com/TheeNate/JobPilot/pkg/anthropic"
)

// stubAnthropicClient returns canned replies in order, or a fixed error. The
// engine calls it from concurrent goroutines, hence the mutex.
type stubAnthropicClient struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   int
}

func (s *stubAnthropicClient) CreateMessage(_ context.Context, _ anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	reply := ""
	if len(s.replies) > 0 {
		reply = s.replies[0]
		if len(s.replies) > 1 {
			s.replies = s.replies[1:]
		}
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: reply}},
	}, nil
}
