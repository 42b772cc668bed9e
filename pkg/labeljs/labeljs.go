// Package labeljs lets deployments map custom tool names to display labels
// with a small JavaScript module, so new connector tools get readable names
// without a rebuild. The script calls register({name, label}) where label is
// a function from tool name to display string (or null to fall through).
package labeljs

import (
	"os"
	"strings"
	"sync"

	"github.com/dop251/goja"
	"github.com/pkg/errors"
)

var ErrNoRegister = errors.New("labeljs: script did not call register()")

type Module struct {
	mu      sync.Mutex
	vm      *goja.Runtime
	name    string
	labelFn goja.Callable
}

// LoadFromFile compiles and runs the labeler script.
func LoadFromFile(scriptPath string) (*Module, error) {
	b, err := os.ReadFile(scriptPath)
	if err != nil {
		return nil, errors.Wrap(err, "read label script")
	}

	m := &Module{vm: goja.New()}

	var config *goja.Object
	if err := m.vm.Set("register", func(cfg goja.Value) error {
		if config != nil {
			return errors.New("register() called more than once")
		}
		if goja.IsNull(cfg) || goja.IsUndefined(cfg) {
			return errors.New("register(config) requires a config object")
		}
		config = cfg.ToObject(m.vm)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "set register")
	}

	prog, err := goja.Compile(scriptPath, string(b), false)
	if err != nil {
		return nil, errors.Wrap(err, "compile label script")
	}
	if _, err := m.vm.RunProgram(prog); err != nil {
		return nil, errors.Wrap(err, "run label script")
	}
	if config == nil {
		return nil, ErrNoRegister
	}

	nameVal := config.Get("name")
	if nameVal == nil || goja.IsUndefined(nameVal) || strings.TrimSpace(nameVal.String()) == "" {
		return nil, errors.New("register({ name: string, label: fn }): name is required")
	}
	m.name = nameVal.String()

	labelVal := config.Get("label")
	fn, ok := goja.AssertFunction(labelVal)
	if !ok {
		return nil, errors.New("register({ label }): label must be a function")
	}
	m.labelFn = fn

	return m, nil
}

// Name is the registered module name.
func (m *Module) Name() string { return m.name }

// Label maps a tool name to a display label. A nullish or empty result
// falls through to the built-in label; a JS exception does too, the hook is
// cosmetic and must never break rendering.
func (m *Module) Label(toolName string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out, err := m.labelFn(goja.Undefined(), m.vm.ToValue(toolName))
	if err != nil {
		return "", false
	}
	if out == nil || goja.IsNull(out) || goja.IsUndefined(out) {
		return "", false
	}
	s := strings.TrimSpace(out.String())
	if s == "" {
		return "", false
	}
	return s, true
}
