// Package rules implements the RuleRegistry: rules indexed by
// language-key and by bound-type, with lifecycle cleanup when a bound
// type disappears from the graph.
package rules

import "github.com/cwbudde/typir/internal/graph"

// Options configures how a rule is indexed. A nil/empty LanguageKeys
// means "any". BoundToType is empty for a global rule.
type Options struct {
	LanguageKeys []string
	BoundToType  []graph.TypeNode
}

// Registry stores rules of any shape — package inference and package
// validation each define their own rule function signature and register
// pointers to their own rule structs here, using the pointer as the
// identity the registry keys off of (Go func values aren't comparable, so
// rules are always registered as *SomeRuleStruct).
type Registry struct {
	byLanguageKey map[string][]any
	undefined     []any
	byBoundType   map[string][]any
	options       map[any]Options
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		byLanguageKey: make(map[string][]any),
		byBoundType:   make(map[string][]any),
		options:       make(map[any]Options),
	}
}

// Add registers rule under opts. Re-adding the same rule with the same
// options is idempotent.
func (r *Registry) Add(rule any, opts Options) {
	if _, exists := r.options[rule]; exists {
		return
	}
	r.options[rule] = opts
	if len(opts.LanguageKeys) == 0 {
		r.undefined = append(r.undefined, rule)
	} else {
		for _, k := range opts.LanguageKeys {
			r.byLanguageKey[k] = appendUnique(r.byLanguageKey[k], rule)
		}
	}
	for _, t := range opts.BoundToType {
		id := t.Identifier()
		r.byBoundType[id] = appendUnique(r.byBoundType[id], rule)
	}
}

// RemoveAll fully deregisters rule, regardless of how it was scoped.
func (r *Registry) RemoveAll(rule any) {
	opts, ok := r.options[rule]
	if !ok {
		return
	}
	if len(opts.LanguageKeys) == 0 {
		r.undefined = removeValue(r.undefined, rule)
	}
	for _, k := range opts.LanguageKeys {
		r.byLanguageKey[k] = removeValue(r.byLanguageKey[k], rule)
	}
	for _, t := range opts.BoundToType {
		r.byBoundType[t.Identifier()] = removeValue(r.byBoundType[t.Identifier()], rule)
	}
	delete(r.options, rule)
}

// RemoveSubset removes rule only from the given languageKeys — if
// languageKeys is a strict subset of the rule's registered keys, the rule
// stays registered under the remaining keys.
func (r *Registry) RemoveSubset(rule any, languageKeys []string) {
	opts, ok := r.options[rule]
	if !ok {
		return
	}
	removeSet := make(map[string]bool, len(languageKeys))
	for _, k := range languageKeys {
		removeSet[k] = true
		r.byLanguageKey[k] = removeValue(r.byLanguageKey[k], rule)
	}
	remaining := opts.LanguageKeys[:0:0]
	for _, k := range opts.LanguageKeys {
		if !removeSet[k] {
			remaining = append(remaining, k)
		}
	}
	if len(remaining) == 0 && len(opts.BoundToType) == 0 {
		delete(r.options, rule)
		return
	}
	opts.LanguageKeys = remaining
	r.options[rule] = opts
}

// OnAddedType implements graph.Listener; the registry has nothing to do on
// type addition.
func (r *Registry) OnAddedType(graph.TypeNode) {}

// OnRemovedType implements graph.Listener: every rule bound to
// t is deregistered from that binding; a rule left with no remaining bound
// types and no language-key scope is fully disposed.
func (r *Registry) OnRemovedType(t graph.TypeNode) {
	id := t.Identifier()
	bound := r.byBoundType[id]
	delete(r.byBoundType, id)
	for _, rule := range bound {
		opts, ok := r.options[rule]
		if !ok {
			continue
		}
		opts.BoundToType = removeTypeNode(opts.BoundToType, id)
		if len(opts.BoundToType) == 0 && len(opts.LanguageKeys) == 0 {
			r.RemoveAll(rule)
			continue
		}
		r.options[rule] = opts
	}
}

// GetRulesByLanguageKey returns the concatenation of rules registered
// under key, then under each of superKeys (in order), then under "any",
// with duplicates filtered so each unique rule appears once.
func (r *Registry) GetRulesByLanguageKey(key string, superKeys []string) []any {
	seen := make(map[any]bool)
	var out []any
	add := func(rules []any) {
		for _, rl := range rules {
			if seen[rl] {
				continue
			}
			seen[rl] = true
			out = append(out, rl)
		}
	}
	add(r.byLanguageKey[key])
	for _, sk := range superKeys {
		add(r.byLanguageKey[sk])
	}
	add(r.undefined)
	return out
}

// GetNumberUniqueRules reports the number of distinct registered rules.
func (r *Registry) GetNumberUniqueRules() int {
	return len(r.options)
}

func appendUnique(s []any, v any) []any {
	for _, existing := range s {
		if existing == v {
			return s
		}
	}
	return append(s, v)
}

func removeValue(s []any, v any) []any {
	out := s[:0:0]
	for _, existing := range s {
		if existing != v {
			out = append(out, existing)
		}
	}
	return out
}

func removeTypeNode(s []graph.TypeNode, id string) []graph.TypeNode {
	out := s[:0:0]
	for _, existing := range s {
		if existing.Identifier() != id {
			out = append(out, existing)
		}
	}
	return out
}
