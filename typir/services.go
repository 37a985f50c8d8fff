package typir

import (
	"github.com/cwbudde/typir/internal/assignability"
	"github.com/cwbudde/typir/internal/graph"
	"github.com/cwbudde/typir/internal/inference"
	"github.com/cwbudde/typir/internal/kinds"
	"github.com/cwbudde/typir/internal/relation"
	"github.com/cwbudde/typir/internal/resolver"
	"github.com/cwbudde/typir/internal/rules"
	"github.com/cwbudde/typir/internal/validation"
)

// KindFactories exposes the `factory.Primitives | Classes | Functions |
// Operators | Custom` surface hosts use to declare their type system.
type KindFactories struct {
	Primitives *kinds.PrimitiveFactory
	Classes    *kinds.ClassFactory
	Functions  *kinds.FunctionFactory
	Operators  *Operators
	TopClass   *kinds.TopClassFactory

	svc    *kinds.Services
	custom map[string]*kinds.CustomFactory
}

// Custom returns the custom-kind factory for opts.Name, building it the
// first time a given name is requested.
func (k *KindFactories) Custom(opts kinds.CustomKindOptions) *kinds.CustomFactory {
	if f, ok := k.custom[opts.Name]; ok {
		return f
	}
	f := kinds.NewCustomFactory(k.svc, opts)
	k.custom[opts.Name] = f
	return f
}

// Services is the assembled engine instance: every relational/inference/
// validation service plus the kind factories, all sharing one Graph and
// one RuleRegistry.
type Services struct {
	Config Config

	Graph         *graph.Graph
	Rules         *rules.Registry
	TypeResolver  *resolver.Resolver
	Inference     *inference.Engine
	Validation    *validation.Collector
	Equality      *relation.Equality
	Subtype       *relation.SubType
	Conversion    *relation.Conversion
	Assignability *assignability.Assignability
	Overloads     *inference.Resolver
	Language      LanguageService

	Kinds *KindFactories
}

// NewServices assembles a fresh engine instance wired to lang: the graph
// first, then the RuleRegistry attached to it, then inference and
// validation sharing that registry, then the relational services and
// assignability, and finally the kind factories wired to all of the
// above.
func NewServices(lang LanguageService, cfg Config) *Services {
	g := graph.New()
	registry := rules.New()
	g.AddListener(registry, graph.ListenOptions{})

	inferEngine := inference.New(registry, lang)
	res := resolver.New(g, inferEngine)
	validationCollector := validation.New(registry, lang)

	eq := relation.NewEquality(g)
	sub := relation.NewSubType(g, eq)
	conv := relation.NewConversion(g)
	relation.NewInvalidationFlusher(g, eq, sub)
	assign := assignability.New(g, eq, sub, conv)
	overloads := inference.NewResolver(assign, cfg.TieBreak)

	kindSvc := &kinds.Services{
		Graph:                   g,
		Rules:                   registry,
		Resolver:                res,
		Equality:                eq,
		SubType:                 sub,
		Conversion:              conv,
		Assign:                  assign,
		Inference:               inferEngine,
		Validation:              validationCollector,
		ThrowOnInheritanceCycle: cfg.OnInheritanceCycle == ThrowError,
		Log:                     cfg.logger(),
	}

	functions := kinds.NewFunctionFactory(kindSvc, overloads)

	svc := &Services{
		Config:        cfg,
		Graph:         g,
		Rules:         registry,
		TypeResolver:  res,
		Inference:     inferEngine,
		Validation:    validationCollector,
		Equality:      eq,
		Subtype:       sub,
		Conversion:    conv,
		Assignability: assign,
		Overloads:     overloads,
		Language:      lang,
	}
	svc.Kinds = &KindFactories{
		Primitives: kinds.NewPrimitiveFactory(kindSvc),
		Classes:    kinds.NewClassFactory(kindSvc),
		Functions:  functions,
		TopClass:   kinds.NewTopClassFactory(kindSvc),
		svc:        kindSvc,
		custom:     make(map[string]*kinds.CustomFactory),
	}
	svc.Kinds.Operators = &Operators{functions: functions}
	return svc
}
