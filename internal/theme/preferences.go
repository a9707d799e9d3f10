package theme

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"cipherstudio-cli/internal/logging"
	"cipherstudio-cli/internal/model"
	"cipherstudio-cli/internal/store"
)

// Preferences holds the current theme and persists every change under
// "<namespace>:theme". Storage failures are logged and otherwise ignored.
type Preferences struct {
	mu      sync.Mutex
	kv      store.KV
	key     string
	env     Environment
	logger  *zap.Logger
	current model.Theme
}

func NewPreferences(kv store.KV, namespace string, env Environment, logger *zap.Logger) *Preferences {
	return &Preferences{
		kv:     kv,
		key:    store.ThemeKey(namespace),
		env:    env,
		logger: logging.OrNop(logger).Named("theme"),
	}
}

// Load returns the saved theme when it is "light" or "dark", else the
// environment's preference. The resolved value is written back.
func (p *Preferences) Load() model.Theme {
	p.mu.Lock()
	defer p.mu.Unlock()

	t := p.env.Preferred()
	if saved, ok := p.saved(); ok {
		t = saved
	}
	p.current = t
	p.save()
	return t
}

func (p *Preferences) saved() (model.Theme, bool) {
	if p.kv == nil {
		return "", false
	}
	b, ok, err := p.kv.Load(p.key)
	if err != nil {
		p.logger.Warn("load theme failed", zap.String("key", p.key), zap.Error(err))
		return "", false
	}
	if !ok {
		return "", false
	}
	t := model.Theme(strings.TrimSpace(string(b)))
	return t, t.Valid()
}

// Current returns the theme without touching storage; Load must run first for
// a saved value to be seen.
func (p *Preferences) Current() model.Theme {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.current.Valid() {
		return p.env.Preferred()
	}
	return p.current
}

// Set switches to t. Values other than light and dark are ignored.
func (p *Preferences) Set(t model.Theme) model.Theme {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !t.Valid() {
		p.logger.Debug("ignoring invalid theme", zap.String("theme", string(t)))
		return p.currentLocked()
	}
	p.current = t
	p.save()
	return t
}

// Toggle flips between dark and light and returns the new value.
func (p *Preferences) Toggle() model.Theme {
	p.mu.Lock()
	defer p.mu.Unlock()
	next := model.ThemeDark
	if p.currentLocked() == model.ThemeDark {
		next = model.ThemeLight
	}
	p.current = next
	p.save()
	return next
}

func (p *Preferences) currentLocked() model.Theme {
	if !p.current.Valid() {
		return p.env.Preferred()
	}
	return p.current
}

func (p *Preferences) save() {
	if p.kv == nil {
		return
	}
	if err := p.kv.Save(p.key, []byte(p.current)); err != nil {
		p.logger.Warn("persist theme failed", zap.String("key", p.key), zap.Error(err))
	}
}
