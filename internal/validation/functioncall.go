package validation

import (
	"fmt"

	"github.com/cwbudde/typir/internal/inference"
	"github.com/cwbudde/typir/internal/rules"
)

// FunctionCallArgumentsValidationOptions configures the per-overload-group
// opt-out: Enabled is consulted once per call-site node, keyed by
// the overload group (usually the called function's name); a nil Enabled
// means every group is checked.
type FunctionCallArgumentsValidationOptions struct {
	Enabled func(groupKey string) bool
}

// NewFunctionCallArgumentsValidation builds the companion validation: it
// only fires when inference found no exact match for the call site, and
// then reports one issue per overload that rejected the call — an
// argument-count mismatch, or the first per-argument type conflict.
func NewFunctionCallArgumentsValidation(
	name string,
	opts rules.Options,
	groupKey func(languageNode any) string,
	candidates inference.CandidateLister,
	arguments inference.ArgumentLister,
	resolver *inference.Resolver,
	cfg FunctionCallArgumentsValidationOptions,
) *StatelessRule {
	return &StatelessRule{
		Name:    name,
		Options: opts,
		Check: func(languageNode any) []*Problem {
			cands := candidates(languageNode)
			if len(cands) == 0 {
				return nil
			}
			key := groupKey(languageNode)
			if cfg.Enabled != nil && !cfg.Enabled(key) {
				return nil
			}

			args := arguments(languageNode)
			if resolver.HasExactMatch(cands, args) {
				return nil
			}

			var problems []*Problem
			for _, c := range cands {
				if len(c.Parameters) != len(args) {
					problems = append(problems, New(languageNode, SeverityError,
						fmt.Sprintf("'%s' expects %d argument(s), got %d", c.Function, len(c.Parameters), len(args))))
					continue
				}
				for i, arg := range args {
					param := c.Parameters[i]
					if arg.Type == param {
						continue
					}
					idx := i
					problems = append(problems, AtProperty(languageNode, "arguments", &idx, SeverityError,
						fmt.Sprintf("argument %d of type '%s' is not compatible with parameter type '%s' of '%s'",
							i, arg.Type, param, c.Function)))
					break
				}
			}
			return problems
		},
	}
}
