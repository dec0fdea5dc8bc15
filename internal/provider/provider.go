// Package provider defines the Provider interface every LLM wire family
// implements, plus the Registry/Factory pattern used to select and
// construct them. Generalized from a flat Message/ToolCall model to the
// canonical core.Message/ContentBlock model.
package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/xonecas/symb/internal/core"
)

// Capabilities describes what a provider/model combination supports.
type Capabilities struct {
	Vision             bool
	Tools              bool
	Streaming          bool
	ParallelToolCalls  bool
	JSONMode           bool
}

// Options configures a provider instance: its resolved API key, base URL,
// model alias, extra headers, and capabilities. Built by internal/config
// from environment variables and the (out-of-core-scope) TOML file, never
// constructed by the core packages themselves.
type Options struct {
	APIKey       string
	BaseURL      string
	Model        string
	ExtraHeaders map[string]string
	Capabilities Capabilities
}

// Provider streams a completion for a request, emitting core.StreamEvent
// values to onEvent as they arrive. It returns once the stream is
// exhausted or ctx is cancelled.
type Provider interface {
	Name() string
	Model() string
	StreamCompletion(ctx context.Context, req core.CompletionRequest, onEvent func(core.StreamEvent) error) error
}

// Factory constructs a Provider from Options.
type Factory func(Options) (Provider, error)

// Registry maps provider names to their Factory.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a Factory under name, overwriting any existing entry.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Build constructs a Provider by name using opts.
func (r *Registry) Build(name string, opts Options) (Provider, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("provider: no factory registered for %q", name)
	}
	return f(opts)
}

// Names returns every registered provider name.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	return names
}

// TaggedModel pairs a provider name with one of its model IDs, used when
// listing every model available across every registered provider.
type TaggedModel struct {
	Provider string
	Model    string
}

// ModelLister is implemented by providers that can enumerate their
// available models (as opposed to accepting any model string the caller
// supplies).
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// ListAllModels fans out ListModels calls across every registered provider
// concurrently and collects the tagged results.
func ListAllModels(ctx context.Context, reg *Registry, built map[string]Provider) ([]TaggedModel, error) {
	type result struct {
		models []TaggedModel
		err    error
	}

	resultsCh := make(chan result, len(built))
	var wg sync.WaitGroup
	for name, p := range built {
		lister, ok := p.(ModelLister)
		if !ok {
			continue
		}
		wg.Add(1)
		go func(name string, lister ModelLister) {
			defer wg.Done()
			models, err := lister.ListModels(ctx)
			if err != nil {
				resultsCh <- result{err: fmt.Errorf("%s: %w", name, err)}
				return
			}
			tagged := make([]TaggedModel, len(models))
			for i, m := range models {
				tagged[i] = TaggedModel{Provider: name, Model: m}
			}
			resultsCh <- result{models: tagged}
		}(name, lister)
	}

	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	var all []TaggedModel
	var firstErr error
	for res := range resultsCh {
		if res.err != nil && firstErr == nil {
			firstErr = res.err
			continue
		}
		all = append(all, res.models...)
	}
	return all, firstErr
}

// ApiKeyRedacted formats an API key for logging: first 4 + last 3 chars
// if long enough, "***" if short but non-empty, "<empty>" if empty.
func ApiKeyRedacted(key string) string {
	switch {
	case key == "":
		return "<empty>"
	case len(key) > 8:
		return fmt.Sprintf("%s...%s", key[:4], key[len(key)-3:])
	default:
		return "***"
	}
}

// BaseURL wraps a provider base URL: strips all trailing slashes at
// construction, and Join never inserts one.
type BaseURL string

// NewBaseURL strips every trailing slash from raw.
func NewBaseURL(raw string) BaseURL {
	for len(raw) > 0 && raw[len(raw)-1] == '/' {
		raw = raw[:len(raw)-1]
	}
	return BaseURL(raw)
}

// Join concatenates the stripped base with path verbatim.
func (b BaseURL) Join(path string) string { return string(b) + path }

func (b BaseURL) String() string { return string(b) }
