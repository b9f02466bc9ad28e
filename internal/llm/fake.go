package llm

import (
	"context"
	"sync"
)

// FakeClient is a scripted Client for tests and offline runs
type FakeClient struct {
	mu        sync.Mutex
	responses []Response
	prompts   []string
	// Fallback is returned once the scripted responses are exhausted
	Fallback Response
}

// NewFakeClient returns a client that replays responses in order
func NewFakeClient(responses ...Response) *FakeClient {
	return &FakeClient{
		responses: responses,
		Fallback:  Response{Provider: "fake", Model: "fake", Error: "no scripted response"},
	}
}

// Call records the prompt and returns the next scripted response
func (f *FakeClient) Call(_ context.Context, prompt string, _ float32, _ int) Response {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if len(f.responses) == 0 {
		return f.Fallback
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	if resp.Provider == "" {
		resp.Provider = "fake"
	}
	if resp.Model == "" {
		resp.Model = "fake"
	}
	return resp
}

// Prompts returns every prompt received so far
func (f *FakeClient) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

// Provider returns "fake"
func (f *FakeClient) Provider() string { return "fake" }

// Model returns "fake"
func (f *FakeClient) Model() string { return "fake" }

// Close is a no-op
func (f *FakeClient) Close() error { return nil }
