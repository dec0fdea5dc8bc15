package permission

import (
	"context"
	"sync"
	"time"

	"github.com/xonecas/symb/internal/core/agenterr"
)

// Manager is the single entry point the tool executor calls before every
// mutating or command-executing tool invocation. Check runs the 4-step
// algorithm from original_source/src/permission/manager.rs: validate the
// request against the security floor, consult the persisted config, then
// the session grants, and only then fall back to prompting the UI.
type Manager struct {
	mu        sync.RWMutex
	config    *Config
	session   *Session
	validator *Validator
	ui        UI

	configPath string
}

// NewManager builds a Manager, loading Config from configPath if present.
func NewManager(workingDir, configPath string, ui UI, now time.Time) (*Manager, error) {
	validator, err := NewValidator(workingDir)
	if err != nil {
		return nil, err
	}
	cfg, err := Load(configPath, now)
	if err != nil {
		return nil, err
	}
	return &Manager{
		config:     cfg,
		session:    NewSession(),
		validator:  validator,
		ui:         ui,
		configPath: configPath,
	}, nil
}

func (m *Manager) validate(req Request) error {
	switch req.OperationType {
	case FileWrite:
		return m.validator.ValidateWrite(req.Target)
	case FileDelete:
		return m.validator.ValidateDelete(req.Target)
	default:
		return nil
	}
}

// Check runs the full permission algorithm for req, prompting the UI only
// if neither the config nor the session already decide it.
func (m *Manager) Check(ctx context.Context, req Request) (CheckResult, error) {
	if err := m.validate(req); err != nil {
		return Denied(err.Error()), nil
	}

	m.mu.RLock()
	configAllowed, err := m.config.IsAllowed(req.OperationType, req.Target)
	m.mu.RUnlock()
	if err != nil {
		return CheckResult{}, &agenterr.ConfigError{Msg: err.Error()}
	}
	if configAllowed {
		return Allowed(), nil
	}

	m.mu.RLock()
	sessionAllowed := m.session.IsAllowed(req.OperationType)
	m.mu.RUnlock()
	if sessionAllowed {
		return Allowed(), nil
	}

	resp, feedback, err := m.ui.PromptUser(ctx, req)
	if err != nil {
		return CheckResult{}, err
	}
	switch resp {
	case AllowOnce:
		return Allowed(), nil
	case AllowSession:
		m.mu.Lock()
		m.session.Add(req.OperationType)
		m.mu.Unlock()
		return Allowed(), nil
	default: // TellModelDifferently
		return Denied(feedback), nil
	}
}
