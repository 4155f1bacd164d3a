package anchored

import (
	"github.com/jrife/warden/variables"
)

// TranslationProxy is a read-only view that exposes the key names of a
// set variable as values, e.g. ARGS_NAMES over ARGS. It owns no data;
// every resolution is computed from the backing set at call time.
type TranslationProxy struct {
	name     string
	registry *Registry
	fount    SetID
}

// NewTranslationProxy creates a proxy named name over the set fount
func NewTranslationProxy(name string, registry *Registry, fount SetID) *TranslationProxy {
	return &TranslationProxy{name: name, registry: registry, fount: fount}
}

// Name returns the proxy name
func (proxy *TranslationProxy) Name() string {
	return proxy.name
}

// translate produces one value per distinct key of the backing set.
// The value is the key itself and carries the origins of the key's
// first value.
func (proxy *TranslationProxy) translate(ke variables.KeyExclusions, match func(key string) bool) []*variables.VariableValue {
	fount := proxy.registry.Get(proxy.fount)

	if fount == nil {
		return nil
	}

	var translated []*variables.VariableValue

	for _, key := range fount.Keys() {
		if ke.ToOmit(key) || (match != nil && !match(key)) {
			continue
		}

		translated = append(translated, proxy.translateKey(fount, key))
	}

	return translated
}

func (proxy *TranslationProxy) translateKey(fount *SetVariable, key string) *variables.VariableValue {
	vv := variables.NewWithCollection(proxy.name, key, key)

	if values := fount.values(key); len(values) > 0 {
		for _, origin := range values[0].Origins() {
			vv.AddOrigin(origin)
		}
	}

	return vv
}

// Resolve prepends one value per key of the backing set to out
func (proxy *TranslationProxy) Resolve(out []*variables.VariableValue) []*variables.VariableValue {
	return variables.Prepend(out, proxy.translate(nil, nil))
}

// ResolveWithExclusions is Resolve skipping excluded keys
func (proxy *TranslationProxy) ResolveWithExclusions(out []*variables.VariableValue, ke variables.KeyExclusions) []*variables.VariableValue {
	return variables.Prepend(out, proxy.translate(ke, nil))
}

// ResolveByKey appends the translation of key if the backing set has it
func (proxy *TranslationProxy) ResolveByKey(key string, out []*variables.VariableValue) []*variables.VariableValue {
	fount := proxy.registry.Get(proxy.fount)

	if fount == nil || len(fount.values(key)) == 0 {
		return out
	}

	return append(out, proxy.translateKey(fount, key))
}

// ResolveFirst returns key if the backing set has it
func (proxy *TranslationProxy) ResolveFirst(key string) (string, bool) {
	fount := proxy.registry.Get(proxy.fount)

	if fount == nil || len(fount.values(key)) == 0 {
		return "", false
	}

	return key, true
}

// ResolveRegularExpression prepends the keys pattern matches
func (proxy *TranslationProxy) ResolveRegularExpression(pattern string, out []*variables.VariableValue) []*variables.VariableValue {
	return proxy.ResolveRegularExpressionWithExclusions(pattern, out, nil)
}

// ResolveRegularExpressionWithExclusions is ResolveRegularExpression
// skipping excluded keys.
func (proxy *TranslationProxy) ResolveRegularExpressionWithExclusions(pattern string, out []*variables.VariableValue, ke variables.KeyExclusions) []*variables.VariableValue {
	re, err := variables.CompilePattern(pattern)

	if err != nil {
		return out
	}

	return variables.Prepend(out, proxy.translate(ke, re.MatchString))
}
