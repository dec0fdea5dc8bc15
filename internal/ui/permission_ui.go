package ui

import (
	"context"

	"github.com/xonecas/symb/internal/permission"
)

// ChannelPermissionUI implements permission.UI for a TUI-backed front end:
// it posts an EventPermissionRequired carrying a one-shot response channel
// onto events, then blocks until the UI answers on that channel or ctx is
// cancelled.
type ChannelPermissionUI struct {
	events chan<- AppEvent
}

// NewChannelPermissionUI returns a ChannelPermissionUI posting onto events.
func NewChannelPermissionUI(events chan<- AppEvent) *ChannelPermissionUI {
	return &ChannelPermissionUI{events: events}
}

// PromptUser implements permission.UI. If the caller's context is
// cancelled, or the UI closes the response channel without answering, this
// returns TellModelDifferently("User cancelled the permission prompt.").
func (c *ChannelPermissionUI) PromptUser(ctx context.Context, req permission.Request) (permission.Response, string, error) {
	respCh := make(PermissionResponseChan, 1)
	c.events <- AppEvent{
		Kind:               EventPermissionRequired,
		PermissionRequest:  req,
		PermissionResponse: respCh,
	}

	select {
	case answer, ok := <-respCh:
		if !ok {
			return permission.TellModelDifferently, "User cancelled the permission prompt.", nil
		}
		return answer.Response, answer.Feedback, nil
	case <-ctx.Done():
		return permission.TellModelDifferently, "User cancelled the permission prompt.", nil
	}
}
