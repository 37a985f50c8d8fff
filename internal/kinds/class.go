package kinds

import (
	"sort"
	"strings"

	"github.com/cwbudde/typir/internal/kind"
	"github.com/cwbudde/typir/internal/relation"
	"github.com/cwbudde/typir/typeerr"
)

// Typing selects structural vs. nominal comparison for a class.
type Typing int

const (
	Structural Typing = iota
	Nominal
)

// FieldDetails names one class field, insertion-ordered and unique within
// its class; a subclass field with the same name shadows the parent's.
type FieldDetails struct {
	Name string
	Type kind.Descriptor
}

// ClassDetails is the TypeDetails for the class kind.
type ClassDetails struct {
	Name                        string
	Typing                      Typing
	SuperClasses                []kind.Descriptor
	Fields                      []FieldDetails
	Methods                     []kind.Descriptor
	MaximumNumberOfSuperClasses int
	SubtypeFieldChecking        ParameterChecking
}

// Field is a resolved class field.
type Field struct {
	Name string
	Type *kind.Node
}

// ClassType is the payload stored on a class's kind.Node.
type ClassType struct {
	node        *kind.Node
	className   string
	typing      Typing
	checking    ParameterChecking
	superRefs   []*kind.Reference
	fields      []Field
	methods     []*kind.Node
}

func (c *ClassType) Node() *kind.Node    { return c.node }
func (c *ClassType) ClassName() string   { return c.className }
func (c *ClassType) Fields() []Field     { return c.fields }
func (c *ClassType) Methods() []*kind.Node { return c.methods }
func (c *ClassType) String() string      { return c.node.UserRepresentation() }

// Field looks up a field by name, respecting shadowing (the most-derived
// declaration of a name wins, which is simply the first match since Fields
// is built most-derived-first).
func (c *ClassType) Field(name string) (Field, bool) {
	for _, f := range c.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// DirectSuperClasses returns the immediately declared super-class nodes.
func (c *ClassType) DirectSuperClasses() []*kind.Node {
	out := make([]*kind.Node, 0, len(c.superRefs))
	for _, r := range c.superRefs {
		if n, ok := r.Resolved(); ok {
			out = append(out, n)
		}
	}
	return out
}

// AllSuperClasses returns every transitive super-class, depth-first (each
// direct super-class is followed by its own super-classes), without
// duplicates.
func (c *ClassType) AllSuperClasses() []*kind.Node {
	seen := make(map[string]bool)
	var out []*kind.Node
	var walk func(*ClassType)
	walk = func(cur *ClassType) {
		for _, super := range cur.DirectSuperClasses() {
			if seen[super.Identifier()] {
				continue
			}
			seen[super.Identifier()] = true
			out = append(out, super)
			if sc, ok := super.Payload().(*ClassType); ok {
				walk(sc)
			}
		}
	}
	walk(c)
	return out
}

// AnalyzeTypeEquality implements relation.EqualityAnalyzer. Nominal classes
// are equal only to themselves (already handled by the identity check
// upstream in relation.Equality, so reaching here always means "not
// equal"); structural classes compare fields and methods pairwise by name.
func (c *ClassType) AnalyzeTypeEquality(other *kind.Node, eq *relation.Equality) *typeerr.Problem {
	oc, ok := other.Payload().(*ClassType)
	if !ok {
		return typeerr.EqualityProblem(c.node, other, "the other type is not a class type")
	}
	if c.typing == Nominal || oc.typing == Nominal {
		return typeerr.EqualityProblem(c.node, other, "nominal classes are only equal to themselves")
	}
	if len(c.fields) != len(oc.fields) {
		return typeerr.EqualityProblem(c.node, other, "different number of fields")
	}
	for i := range c.fields {
		of := oc.fields[i]
		if c.fields[i].Name != of.Name {
			return typeerr.EqualityProblem(c.node, other, "field names differ at position "+of.Name)
		}
		if !eq.AreEqual(c.fields[i].Type, of.Type) {
			return typeerr.EqualityProblem(c.node, other, "field '"+of.Name+"' types are not equal")
		}
	}
	if len(c.methods) != len(oc.methods) {
		return typeerr.EqualityProblem(c.node, other, "different number of methods")
	}
	for i := range c.methods {
		if !eq.AreEqual(c.methods[i], oc.methods[i]) {
			return typeerr.EqualityProblem(c.node, other, "methods are not equal")
		}
	}
	return nil
}

// AnalyzeSubType implements relation.SubTypeAnalyzer. A nominal class is a
// sub-type of candidateSuper iff candidateSuper appears (by equality) among
// its transitive super-classes. A structural class is a sub-type of
// candidateSuper iff every field of candidateSuper is present here with a
// compatible type, per c.checking.
func (c *ClassType) AnalyzeSubType(candidateSuper *kind.Node, sub *relation.SubType) *typeerr.Problem {
	oc, ok := candidateSuper.Payload().(*ClassType)
	if !ok {
		return typeerr.SubTypeProblem(c.node, candidateSuper, "the candidate super type is not a class type")
	}

	if c.typing == Nominal {
		for _, super := range c.AllSuperClasses() {
			if super == candidateSuper {
				return nil
			}
		}
		return typeerr.SubTypeProblem(c.node, candidateSuper, "'"+candidateSuper.String()+"' is not among the declared super-classes")
	}

	for _, expected := range oc.fields {
		actual, ok := c.Field(expected.Name)
		if !ok {
			return typeerr.SubTypeProblem(c.node, candidateSuper, "missing field '"+expected.Name+"'")
		}
		if !fieldCompatible(actual.Type, expected.Type, c.checking, sub) {
			return typeerr.SubTypeProblem(c.node, candidateSuper, "field '"+expected.Name+"' has an incompatible type")
		}
	}
	return nil
}

func fieldCompatible(actual, expected *kind.Node, checking ParameterChecking, sub *relation.SubType) bool {
	switch checking {
	case EqualType:
		return sub.IsSubType(actual, expected) && sub.IsSubType(expected, actual)
	case SubType:
		return sub.IsSubType(actual, expected)
	default: // AssignableType: falls back to sub-typing here; the full
		// assignability search (which also considers conversions) is run
		// by package assignability, which a host can use directly for
		// this comparison when wiring a custom field checker.
		return sub.IsSubType(actual, expected)
	}
}

// ClassFactory is the "ClassKind" factory, supporting both structural and
// nominal comparison modes.
type ClassFactory struct {
	svc *Services
}

// NewClassFactory builds a ClassFactory over svc.
func NewClassFactory(svc *Services) *ClassFactory {
	return &ClassFactory{svc: svc}
}

// Create builds (or returns the collapsed pre-existing) class type. Field
// name uniqueness is host misuse when violated and panics immediately,
// before any reference or node is created.
func (f *ClassFactory) Create(details ClassDetails) *ClassType {
	seen := make(map[string]bool, len(details.Fields))
	for _, field := range details.Fields {
		if seen[field.Name] {
			panic("typir: duplicate field name '" + field.Name + "' in class '" + details.Name + "'")
		}
		seen[field.Name] = true
	}
	if details.MaximumNumberOfSuperClasses > 0 && len(details.SuperClasses) > details.MaximumNumberOfSuperClasses {
		panic("typir: class '" + details.Name + "' declares more super-classes than its configured maximum")
	}

	ct := &ClassType{className: details.Name, typing: details.Typing, checking: details.SubtypeFieldChecking}

	superRefs := make([]*kind.Reference, len(details.SuperClasses))
	for i, d := range details.SuperClasses {
		superRefs[i] = kind.NewReference(f.svc.Resolver, f.svc.Graph, d)
	}
	fieldRefs := make([]*kind.Reference, len(details.Fields))
	for i, d := range details.Fields {
		fieldRefs[i] = kind.NewReference(f.svc.Resolver, f.svc.Graph, d.Type)
	}
	methodRefs := make([]*kind.Reference, len(details.Methods))
	for i, d := range details.Methods {
		methodRefs[i] = kind.NewReference(f.svc.Resolver, f.svc.Graph, d)
	}

	// Preconditions for Identifiable only require super-classes and field
	// types to be Identifiable (their identifiers, not their full
	// completion, are what this class's own identifier is built from);
	// Completed additionally waits for all of them to fully complete, so
	// the cycle check in onCompleted always runs against finished classes.
	identifiableRefs := append(append([]*kind.Reference{}, superRefs...), fieldRefs...)
	identifiableRefs = append(identifiableRefs, methodRefs...)

	ct.superRefs = superRefs

	plan := kind.Plan{
		PreconditionsForIdentifiable:      identifiableRefs,
		PreconditionsForCompleted:         identifiableRefs,
		ReferencesRelevantForInvalidation: identifiableRefs,
		OnIdentifiable: func(*kind.Node) (string, string, string) {
			id := classIdentifier(details, superRefs, fieldRefs)
			return id, details.Name, classUserRepresentation(details, fieldRefs)
		},
		OnCompleted: func(n *kind.Node) error {
			if !detectInheritanceCycle(ct) {
				return nil
			}
			err := &typeerr.CycleIntroduced{From: n.Identifier(), To: n.Identifier(), Mode: "class-hierarchy"}
			if f.svc.ThrowOnInheritanceCycle {
				panic(err)
			}
			return err
		},
	}

	kind.NewInitializer("ClassKind", plan, func(init *kind.Initializer) {
		n := init.GetTypeInitial()
		ct.node = n
		ct.fields = resolveFields(details.Fields, fieldRefs, superRefs)
		ct.methods = resolveNodes(methodRefs)
		n.SetPayload(ct)

		altKey := ""
		if details.Typing == Structural {
			altKey = details.Name
		}
		final, collapsed, err := producedType(f.svc, altKey, n)
		if err != nil {
			panic(err)
		}
		if collapsed {
			ct = final.Payload().(*ClassType)
		} else {
			ct.node = final
		}
		init.SetProduced(final)
	})
	return ct
}

// resolveFields builds this class's own field list followed by inherited
// fields not shadowed by a same-named declaration here: a subclass field
// shadows its parent's field of the same name.
func resolveFields(details []FieldDetails, refs []*kind.Reference, superRefs []*kind.Reference) []Field {
	own := make([]Field, len(details))
	declared := make(map[string]bool, len(details))
	for i, d := range details {
		n, _ := refs[i].Resolved()
		own[i] = Field{Name: d.Name, Type: n}
		declared[d.Name] = true
	}
	for _, superRef := range superRefs {
		superNode, ok := superRef.Resolved()
		if !ok {
			continue
		}
		superClass, ok := superNode.Payload().(*ClassType)
		if !ok {
			continue
		}
		for _, f := range superClass.fields {
			if declared[f.Name] {
				continue
			}
			declared[f.Name] = true
			own = append(own, f)
		}
	}
	return own
}

func resolveNodes(refs []*kind.Reference) []*kind.Node {
	out := make([]*kind.Node, len(refs))
	for i, r := range refs {
		out[i], _ = r.Resolved()
	}
	return out
}

// detectInheritanceCycle walks the declared super-class chain looking for
// n appearing among its own (transitive) super-classes.
func detectInheritanceCycle(c *ClassType) bool {
	for _, super := range c.AllSuperClasses() {
		if super == c.node {
			return true
		}
	}
	return false
}

func classIdentifier(details ClassDetails, superRefs, fieldRefs []*kind.Reference) string {
	var b strings.Builder
	b.WriteString("class-")
	b.WriteString(details.Name)
	if details.Typing == Structural {
		names := make([]string, len(details.Fields))
		ids := make(map[string]string, len(details.Fields))
		for i, d := range details.Fields {
			names[i] = d.Name
			if n, ok := fieldRefs[i].Resolved(); ok {
				ids[d.Name] = n.Identifier()
			}
		}
		sort.Strings(names)
		b.WriteString("{")
		for i, name := range names {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(name)
			b.WriteByte(':')
			b.WriteString(ids[name])
		}
		b.WriteString("}")
		return b.String()
	}
	for _, r := range superRefs {
		b.WriteByte(':')
		if n, ok := r.Resolved(); ok {
			b.WriteString(n.Identifier())
		}
	}
	return b.String()
}

func classUserRepresentation(details ClassDetails, fieldRefs []*kind.Reference) string {
	var b strings.Builder
	b.WriteString(details.Name)
	b.WriteString(" { ")
	for i, d := range details.Fields {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(d.Name)
		b.WriteString(": ")
		if n, ok := fieldRefs[i].Resolved(); ok {
			b.WriteString(n.UserRepresentation())
		}
	}
	b.WriteString(" }")
	return b.String()
}
