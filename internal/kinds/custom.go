package kinds

import (
	"sort"
	"strings"

	"github.com/cwbudde/typir/internal/kind"
	"github.com/cwbudde/typir/internal/relation"
	"github.com/cwbudde/typir/typeerr"
)

// valueTag discriminates a custom type's property value shapes.
type valueTag int

const (
	tagPrimitive valueTag = iota
	tagTypeDescriptor
	tagSequence
	tagSet
	tagMapping
	tagObject
	tagUndefined
)

// Value is a custom type's property value: exactly one of a primitive's
// string-form, a resolved type node, an ordered sequence, a set, a
// name-sorted mapping, or a nested object.
type Value struct {
	tag     valueTag
	literal string
	typ     *kind.Node
	items   []Value
	fields  map[string]Value
}

// PrimitiveValue wraps a primitive (string|number|bool|bigint|symbol)
// already rendered to its string-form.
func PrimitiveValue(s string) Value { return Value{tag: tagPrimitive, literal: s} }

// TypeDescriptorValue wraps a resolved type, identified by its own
// identifier.
func TypeDescriptorValue(t *kind.Node) Value { return Value{tag: tagTypeDescriptor, typ: t} }

// SequenceValue preserves item order.
func SequenceValue(items ...Value) Value { return Value{tag: tagSequence, items: items} }

// SetValue is order-independent; its identifier sorts per-element ids.
func SetValue(items ...Value) Value { return Value{tag: tagSet, items: items} }

// MappingValue is a string-keyed map, identified key-sorted.
func MappingValue(fields map[string]Value) Value { return Value{tag: tagMapping, fields: fields} }

// ObjectValue is a nested named-field object, identified key-sorted.
func ObjectValue(fields map[string]Value) Value { return Value{tag: tagObject, fields: fields} }

// UndefinedValue is the literal "undefined" value.
func UndefinedValue() Value { return Value{tag: tagUndefined} }

// defaultIdentifier is the default identifier formula for a custom type's
// property values, used when CalculateTypeIdentifier is not supplied.
func defaultIdentifier(v Value) string {
	switch v.tag {
	case tagPrimitive:
		return v.literal
	case tagTypeDescriptor:
		if v.typ == nil {
			return "undefined"
		}
		return v.typ.Identifier()
	case tagSequence:
		parts := make([]string, len(v.items))
		for i, item := range v.items {
			parts[i] = defaultIdentifier(item)
		}
		return "[" + strings.Join(parts, ",") + "]"
	case tagSet:
		parts := make([]string, len(v.items))
		for i, item := range v.items {
			parts[i] = defaultIdentifier(item)
		}
		sort.Strings(parts)
		return "(" + strings.Join(parts, ",") + ")"
	case tagMapping:
		return mappingLikeIdentifier(v.fields, "=")
	case tagObject:
		return mappingLikeIdentifier(v.fields, ":")
	default: // tagUndefined
		return "undefined"
	}
}

func mappingLikeIdentifier(fields map[string]Value, sep string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + sep + defaultIdentifier(fields[k])
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// CustomKindOptions configures a custom kind: one set of options per
// distinct custom kind name, shared by every instance Create builds.
type CustomKindOptions struct {
	Name string

	CalculateTypeIdentifier         func(properties map[string]Value) string
	CalculateTypeName               func(properties map[string]Value) string
	CalculateTypeUserRepresentation func(properties map[string]Value) string

	// GetSubTypesOfNew/GetSuperTypesOfNew are consulted once, right after
	// the new instance is produced, to eagerly wire explicit sub-type
	// edges.
	GetSubTypesOfNew   func(n *CustomType) []*kind.Node
	GetSuperTypesOfNew func(n *CustomType) []*kind.Node

	// ImplicitlyConvertibleFromNew/ImplicitlyConvertibleToNew are
	// consulted once, right after the new instance is produced, to
	// eagerly wire IMPLICIT_EXPLICIT conversion edges.
	ImplicitlyConvertibleFromNew func(n *CustomType) []*kind.Node
	ImplicitlyConvertibleToNew   func(n *CustomType) []*kind.Node

	// IsNewSubTypeOf is a dynamic fallback consulted by AnalyzeSubType for
	// relations not captured by the eager lists above.
	IsNewSubTypeOf func(n *CustomType, candidateSuper *kind.Node) bool

	// ConvertibleToType/ConvertibleFromType are exposed for host rules
	// that want to consult dynamic convertibility directly; unlike the
	// sub-type predicate, they are not wired into relation.Conversion's
	// edge set automatically (Conversion has no analyzer dispatch; its
	// edges come only from MarkAsConvertible).
	ConvertibleToType   func(n *CustomType, target *kind.Node) bool
	ConvertibleFromType func(n *CustomType, source *kind.Node) bool
}

// CustomType is the payload stored on a custom kind instance's kind.Node.
type CustomType struct {
	node       *kind.Node
	properties map[string]Value
	opts       *CustomKindOptions
}

func (c *CustomType) Node() *kind.Node            { return c.node }
func (c *CustomType) Properties() map[string]Value { return c.properties }
func (c *CustomType) String() string               { return c.node.UserRepresentation() }

func (c *CustomType) AnalyzeTypeEquality(other *kind.Node, _ *relation.Equality) *typeerr.Problem {
	oc, ok := other.Payload().(*CustomType)
	if !ok || oc.opts.Name != c.opts.Name {
		return typeerr.EqualityProblem(c.node, other, "the other type is not the same custom kind")
	}
	if defaultIdentifier(ObjectValue(c.properties)) == defaultIdentifier(ObjectValue(oc.properties)) {
		return nil
	}
	return typeerr.EqualityProblem(c.node, other, "property graphs are not equal")
}

func (c *CustomType) AnalyzeSubType(candidateSuper *kind.Node, _ *relation.SubType) *typeerr.Problem {
	if c.opts.IsNewSubTypeOf != nil && c.opts.IsNewSubTypeOf(c, candidateSuper) {
		return nil
	}
	return typeerr.SubTypeProblem(c.node, candidateSuper, "no declared or derived sub-type relation")
}

// CustomFactory is a single custom kind's $name factory.
type CustomFactory struct {
	svc  *Services
	opts CustomKindOptions
}

// NewCustomFactory builds a CustomFactory for one custom kind, configured
// by opts' properties schema and relationship hooks.
func NewCustomFactory(svc *Services, opts CustomKindOptions) *CustomFactory {
	return &CustomFactory{svc: svc, opts: opts}
}

// Create builds (or returns the collapsed pre-existing) custom type
// instance described by properties.
func (f *CustomFactory) Create(properties map[string]Value) *CustomType {
	ct := &CustomType{properties: properties, opts: &f.opts}

	identify := f.opts.CalculateTypeIdentifier
	if identify == nil {
		identify = func(p map[string]Value) string { return defaultIdentifier(ObjectValue(p)) }
	}
	name := f.opts.CalculateTypeName
	if name == nil {
		name = identify
	}
	repr := f.opts.CalculateTypeUserRepresentation
	if repr == nil {
		repr = name
	}

	plan := kind.Plan{
		OnIdentifiable: func(*kind.Node) (string, string, string) {
			return f.opts.Name + "-" + identify(properties), name(properties), repr(properties)
		},
	}

	kind.NewInitializer(f.opts.Name, plan, func(init *kind.Initializer) {
		n := init.GetTypeInitial()
		ct.node = n
		n.SetPayload(ct)

		final, collapsed, err := producedType(f.svc, "", n)
		if err != nil {
			panic(err)
		}
		if collapsed {
			ct = final.Payload().(*CustomType)
		} else {
			ct.node = final
			f.wireRelations(ct)
		}
		init.SetProduced(final)
	})
	return ct
}

func (f *CustomFactory) wireRelations(ct *CustomType) {
	if f.opts.GetSubTypesOfNew != nil {
		for _, sub := range f.opts.GetSubTypesOfNew(ct) {
			_ = f.svc.SubType.MarkAsSubType(sub, ct.node, false)
		}
	}
	if f.opts.GetSuperTypesOfNew != nil {
		for _, super := range f.opts.GetSuperTypesOfNew(ct) {
			_ = f.svc.SubType.MarkAsSubType(ct.node, super, false)
		}
	}
	if f.opts.ImplicitlyConvertibleFromNew != nil {
		for _, src := range f.opts.ImplicitlyConvertibleFromNew(ct) {
			_ = f.svc.Conversion.MarkAsConvertible(src, ct.node, relation.ConversionImplicitExplicit)
		}
	}
	if f.opts.ImplicitlyConvertibleToNew != nil {
		for _, tgt := range f.opts.ImplicitlyConvertibleToNew(ct) {
			_ = f.svc.Conversion.MarkAsConvertible(ct.node, tgt, relation.ConversionImplicitExplicit)
		}
	}
}
