package permission

import "context"

// UI is the pluggable prompt surface PermissionManager falls back to once
// neither the persisted Config nor the in-memory Session already covers a
// request. The TUI implements this with an interactive dialog; tests use
// Headless below. feedback is only meaningful when the Response is
// TellModelDifferently — it becomes the tool_result text sent to the model.
type UI interface {
	PromptUser(ctx context.Context, req Request) (resp Response, feedback string, err error)
}

// Headless is a scriptable UI double for tests: it returns a fixed
// Response (optionally carrying feedback text for TellModelDifferently)
// for every prompt, recording the requests it was asked about.
type Headless struct {
	Response Response
	Feedback string
	Seen     []Request
}

// Deny returns a Headless that denies every request with feedback.
func Deny(feedback string) *Headless {
	return &Headless{Response: TellModelDifferently, Feedback: feedback}
}

// AllowOnceUI returns a Headless that allows every request a single time.
func AllowOnceUI() *Headless { return &Headless{Response: AllowOnce} }

// AllowSessionUI returns a Headless that allows every request and grants
// it for the rest of the session.
func AllowSessionUI() *Headless { return &Headless{Response: AllowSession} }

func (h *Headless) PromptUser(_ context.Context, req Request) (Response, string, error) {
	h.Seen = append(h.Seen, req)
	return h.Response, h.Feedback, nil
}
