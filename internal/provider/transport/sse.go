// Package transport holds the provider-family-agnostic plumbing: the SSE
// parser, the retrying HTTP client, and the stream accumulator. Wire-format
// specific request/response shaping lives in internal/provider's family
// adapters, which build on top of this package.
package transport

import "strings"

// SSEEvent is one parsed server-sent event.
type SSEEvent struct {
	Type string
	Data string
}

// SSEParser incrementally parses a byte stream of server-sent events,
// tolerating arbitrary chunk boundaries (a chunk may split mid-line, or
// mid multi-byte UTF-8 sequence).
type SSEParser struct {
	buf         strings.Builder
	eventType   string
	dataLines   []string
}

// NewSSEParser returns a ready-to-use parser.
func NewSSEParser() *SSEParser { return &SSEParser{} }

// Feed appends a chunk of raw bytes and returns every complete event the
// chunk completes, in order. Incomplete trailing data is buffered for the
// next call.
func (p *SSEParser) Feed(chunk []byte) []SSEEvent {
	p.buf.Write(chunk)
	data := p.buf.String()
	p.buf.Reset()

	var events []SSEEvent
	for {
		idx := strings.IndexByte(data, '\n')
		if idx < 0 {
			p.buf.WriteString(data)
			break
		}
		line := data[:idx]
		data = data[idx+1:]
		line = strings.TrimSuffix(line, "\r")

		if line == "" {
			if ev, ok := p.flush(); ok {
				events = append(events, ev)
			}
			continue
		}

		switch {
		case strings.HasPrefix(line, "event:"):
			p.eventType = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			d := strings.TrimPrefix(line, "data:")
			d = strings.TrimPrefix(d, " ")
			if d == "[DONE]" {
				// The [DONE] sentinel is dropped at ingestion and never
				// becomes an event.
				continue
			}
			p.dataLines = append(p.dataLines, d)
		default:
			// Unknown field (id:, retry:, comments starting with ':') —
			// ignored, matching the reference parser.
		}
	}
	return events
}

// flush finalizes the event currently being assembled, if it has any data.
func (p *SSEParser) flush() (SSEEvent, bool) {
	if len(p.dataLines) == 0 {
		p.eventType = ""
		return SSEEvent{}, false
	}
	ev := SSEEvent{
		Type: p.eventType,
		Data: strings.Join(p.dataLines, "\n"),
	}
	p.eventType = ""
	p.dataLines = nil
	return ev, true
}
