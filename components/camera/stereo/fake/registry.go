package fake

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/stereomesh/components/camera/stereo"
	"go.viam.com/stereomesh/utils"
)

// Registry is an in-memory stereo.ParameterRegistry. Parameters may be selected: their value
// depends on the current entry of a selector enum, the way ComponentEnable depends on
// ComponentSelector. It is safe for concurrent use.
type Registry struct {
	mu        sync.Mutex
	values    map[string]interface{}
	entries   map[string][]string
	readOnly  map[string]bool
	selectors map[string]string
	commands  map[string]func() error
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		values:    map[string]interface{}{},
		entries:   map[string][]string{},
		readOnly:  map[string]bool{},
		selectors: map[string]string{},
		commands:  map[string]func() error{},
	}
}

// Define adds a boolean, float64, int64 or string parameter.
func (r *Registry) Define(name string, value interface{}, writable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[name] = value
	r.readOnly[name] = !writable
}

// DefineEnum adds an enum parameter.
func (r *Registry) DefineEnum(name string, entries []string, value string, writable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = entries
	r.values[name] = enumValue(value)
	r.readOnly[name] = !writable
}

// DefineSelected adds a parameter whose value is kept per entry of selector. For enum
// parameters pass the allowed entries, otherwise nil.
func (r *Registry) DefineSelected(name, selector string, values map[string]interface{}, entries []string, writable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selectors[name] = selector
	r.readOnly[name] = !writable
	if entries != nil {
		r.entries[name] = entries
	}
	for sel, v := range values {
		if s, ok := v.(string); ok && entries != nil {
			v = enumValue(s)
		}
		r.values[selectedKey(name, sel)] = v
	}
}

// DefineCommand adds a command. fn runs without the registry lock held.
func (r *Registry) DefineCommand(name string, fn func() error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[name] = fn
}

// Remove deletes a parameter, as if the device firmware lacked it.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.values, name)
	delete(r.entries, name)
	delete(r.selectors, name)
	delete(r.commands, name)
	for key := range r.values {
		if strings.HasPrefix(key, name+"/") {
			delete(r.values, key)
		}
	}
}

// force writes a value even if the parameter is read-only.
func (r *Registry) force(name string, value interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[r.key(name)] = value
}

// selected reads the value name has for selector entry sel without touching the selector.
func (r *Registry) selected(name, sel string) (interface{}, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.values[selectedKey(name, sel)]
	return v, ok
}

// enumValue keeps enums apart from string parameters.
type enumValue string

func selectedKey(name, sel string) string {
	return name + "/" + sel
}

func (r *Registry) key(name string) string {
	sel, ok := r.selectors[name]
	if !ok {
		return name
	}
	cur, ok := r.values[sel].(enumValue)
	if !ok {
		return name
	}
	return selectedKey(name, string(cur))
}

func get[T any](r *Registry, name string) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero T
	v, ok := r.values[r.key(name)]
	if !ok {
		return zero, stereo.NewParameterUnavailableError(name)
	}
	t, err := utils.AssertType[T](v)
	if err != nil {
		return zero, errors.Wrapf(err, "parameter %q", name)
	}
	return t, nil
}

func set[T any](r *Registry, name string, v T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := r.key(name)
	old, ok := r.values[key]
	if !ok {
		return stereo.NewParameterUnavailableError(name)
	}
	if _, err := utils.AssertType[T](old); err != nil {
		return errors.Wrapf(err, "parameter %q", name)
	}
	if r.readOnly[name] {
		return errors.Errorf("parameter %q is read-only", name)
	}
	r.values[key] = v
	return nil
}

func (r *Registry) IsWritable(name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.commands[name]; ok {
		return true, nil
	}
	if _, ok := r.values[r.key(name)]; !ok {
		return false, stereo.NewParameterUnavailableError(name)
	}
	return !r.readOnly[name], nil
}

func (r *Registry) GetBoolean(name string) (bool, error) {
	return get[bool](r, name)
}

func (r *Registry) SetBoolean(name string, v bool) error {
	return set(r, name, v)
}

func (r *Registry) GetEnum(name string) (string, []string, error) {
	v, err := get[enumValue](r, name)
	if err != nil {
		return "", nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return string(v), append([]string(nil), r.entries[name]...), nil
}

func (r *Registry) SetEnum(name, v string) error {
	r.mu.Lock()
	allowed, ok := r.entries[name]
	r.mu.Unlock()
	if ok && !lo.Contains(allowed, v) {
		return errors.Errorf("%q is not an entry of %q", v, name)
	}
	return set(r, name, enumValue(v))
}

func (r *Registry) GetFloat(name string) (float64, error) {
	return get[float64](r, name)
}

func (r *Registry) SetFloat(name string, v float64) error {
	return set(r, name, v)
}

func (r *Registry) GetInteger(name string) (int64, error) {
	return get[int64](r, name)
}

func (r *Registry) SetInteger(name string, v int64) error {
	return set(r, name, v)
}

func (r *Registry) GetString(name string) (string, error) {
	return get[string](r, name)
}

func (r *Registry) SetString(name, v string) error {
	return set(r, name, v)
}

func (r *Registry) ExecuteCommand(name string) error {
	r.mu.Lock()
	fn, ok := r.commands[name]
	r.mu.Unlock()
	if !ok {
		return stereo.NewParameterUnavailableError(name)
	}
	return fn()
}
