// Package typir is the public façade of the engine: it assembles the
// internal graph/kind/resolver/rules/relation/assignability/inference/
// validation/kinds packages into one Services handle exposed to hosts.
package typir

// LanguageService is the host adapter: the engine has no notion of the
// host's AST shape, only of opaque language nodes and the string keys
// used to look up rules for them.
type LanguageService interface {
	// IsLanguageNode reports whether x is one of the host's own AST/IR
	// nodes (as opposed to, say, a bare string or a type node passed by
	// mistake).
	IsLanguageNode(x any) bool

	// GetLanguageNodeKey returns the rule-lookup key for languageNode, or
	// "" if none applies.
	GetLanguageNodeKey(languageNode any) string

	// GetAllSuperKeys returns key's super-keys, most specific first, used
	// to extend a rule lookup beyond rules registered exactly under key.
	GetAllSuperKeys(key string) []string
}
