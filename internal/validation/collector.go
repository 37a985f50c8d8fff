package validation

import (
	"context"

	"github.com/cwbudde/typir/internal/rules"
)

// LanguageService is the slice of the host LanguageService this package
// needs, identical in shape to inference.LanguageService (kept as its own
// interface so validation does not need to import inference).
type LanguageService interface {
	GetLanguageNodeKey(languageNode any) string
	GetAllSuperKeys(key string) []string
}

// StatelessRule is a pure per-node check.
type StatelessRule struct {
	Name    string
	Options rules.Options
	Check   func(languageNode any) []*Problem
}

// LifecycleRule adds root-level hooks around the per-node traversal:
// BeforeValidation/AfterValidation run once per validate(root) call, in
// registration order; Validation runs per node
// like a StatelessRule's Check.
type LifecycleRule struct {
	Name             string
	Options          rules.Options
	BeforeValidation func(root any) []*Problem
	Validation       func(languageNode any) []*Problem
	AfterValidation  func(root any) []*Problem
}

// Collector implements the validate(root) traversal.
type Collector struct {
	registry  *rules.Registry
	lang      LanguageService
	lifecycle []*LifecycleRule
}

// New builds a Collector over the shared registry.
func New(registry *rules.Registry, lang LanguageService) *Collector {
	return &Collector{registry: registry, lang: lang}
}

// AddStatelessRule registers rule for per-node traversal.
func (c *Collector) AddStatelessRule(rule *StatelessRule) {
	c.registry.Add(rule, rule.Options)
}

// AddLifecycleRule registers rule both for per-node traversal (its
// Validation field) and for the before/after hooks, in the order added.
func (c *Collector) AddLifecycleRule(rule *LifecycleRule) {
	c.registry.Add(rule, rule.Options)
	c.lifecycle = append(c.lifecycle, rule)
}

// RemoveRule fully deregisters rule, whichever shape it is.
func (c *Collector) RemoveRule(rule any) {
	c.registry.RemoveAll(rule)
	if lr, ok := rule.(*LifecycleRule); ok {
		for i, existing := range c.lifecycle {
			if existing == lr {
				c.lifecycle = append(c.lifecycle[:i], c.lifecycle[i+1:]...)
				break
			}
		}
	}
}

// Validate runs the full three-phase collection: beforeValidation hooks,
// then validation(node) for every node the host
// supplies (the host decides what subtree to traverse and passes it in as
// nodes), then afterValidation hooks. ctx is checked between nodes only;
// the engine itself performs no I/O and never blocks.
func (c *Collector) Validate(ctx context.Context, root any, nodes []any) []*Problem {
	var out []*Problem

	for _, l := range c.lifecycle {
		if l.BeforeValidation != nil {
			out = append(out, l.BeforeValidation(root)...)
		}
	}

	for _, node := range nodes {
		if err := ctx.Err(); err != nil {
			break
		}
		key := c.lang.GetLanguageNodeKey(node)
		super := c.lang.GetAllSuperKeys(key)
		for _, r := range c.registry.GetRulesByLanguageKey(key, super) {
			switch rule := r.(type) {
			case *StatelessRule:
				out = append(out, rule.Check(node)...)
			case *LifecycleRule:
				if rule.Validation != nil {
					out = append(out, rule.Validation(node)...)
				}
			}
		}
	}

	for _, l := range c.lifecycle {
		if l.AfterValidation != nil {
			out = append(out, l.AfterValidation(root)...)
		}
	}

	return out
}
