package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/xonecas/symb/internal/core"
)

func TestRegistryBuildUnknownProvider(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Build("nope", Options{}); err == nil {
		t.Fatal("expected error building unregistered provider")
	}
}

func TestRegistryRegisterAndBuild(t *testing.T) {
	reg := NewRegistry()
	reg.Register("stub", func(opts Options) (Provider, error) {
		return &stubProvider{model: opts.Model}, nil
	})

	p, err := reg.Build("stub", Options{Model: "stub-1"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if p.Model() != "stub-1" {
		t.Errorf("Model() = %q, want stub-1", p.Model())
	}

	names := reg.Names()
	if len(names) != 1 || names[0] != "stub" {
		t.Errorf("Names() = %v, want [stub]", names)
	}
}

func TestRegistryRegisterOverwrites(t *testing.T) {
	reg := NewRegistry()
	reg.Register("stub", func(opts Options) (Provider, error) { return &stubProvider{model: "first"}, nil })
	reg.Register("stub", func(opts Options) (Provider, error) { return &stubProvider{model: "second"}, nil })

	p, err := reg.Build("stub", Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if p.Model() != "second" {
		t.Errorf("Model() = %q, want second (later Register should win)", p.Model())
	}
}

func TestApiKeyRedacted(t *testing.T) {
	cases := []struct {
		key  string
		want string
	}{
		{"", "<empty>"},
		{"short", "***"},
		{"sk-ant-1234567890", "sk-a...890"},
	}
	for _, tc := range cases {
		if got := ApiKeyRedacted(tc.key); got != tc.want {
			t.Errorf("ApiKeyRedacted(%q) = %q, want %q", tc.key, got, tc.want)
		}
	}
}

func TestBaseURLStripsTrailingSlashes(t *testing.T) {
	b := NewBaseURL("https://api.example.com///")
	if got, want := b.String(), "https://api.example.com"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := b.Join("/v1/messages"), "https://api.example.com/v1/messages"; got != want {
		t.Errorf("Join() = %q, want %q", got, want)
	}
}

func TestBaseURLNoTrailingSlash(t *testing.T) {
	b := NewBaseURL("https://api.example.com")
	if got, want := b.Join("/v1/chat"), "https://api.example.com/v1/chat"; got != want {
		t.Errorf("Join() = %q, want %q", got, want)
	}
}

func TestListAllModelsFansOutAndTags(t *testing.T) {
	reg := NewRegistry()
	built := map[string]Provider{
		"a": &stubProvider{model: "m", models: []string{"a-1", "a-2"}},
		"b": &stubProvider{model: "m", models: []string{"b-1"}},
		"c": &stubProvider{model: "m"}, // a ModelLister with no models: contributes nothing
	}
	results, err := ListAllModels(context.Background(), reg, built)
	if err != nil {
		t.Fatalf("ListAllModels: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
}

func TestListAllModelsPropagatesError(t *testing.T) {
	built := map[string]Provider{
		"broken": &stubProvider{model: "m", listErr: errors.New("boom")},
	}
	_, err := ListAllModels(context.Background(), NewRegistry(), built)
	if err == nil {
		t.Fatal("expected propagated error")
	}
}

type stubProvider struct {
	model   string
	models  []string
	listErr error
}

func (s *stubProvider) Name() string  { return "stub" }
func (s *stubProvider) Model() string { return s.model }
func (s *stubProvider) StreamCompletion(ctx context.Context, req core.CompletionRequest, onEvent func(core.StreamEvent) error) error {
	return nil
}
func (s *stubProvider) ListModels(ctx context.Context) ([]string, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.models, nil
}
