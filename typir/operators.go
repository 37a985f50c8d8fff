package typir

import "github.com/cwbudde/typir/internal/kinds"

// Operators is a thin convenience layer over the function kind for
// operator overloads: an operator is simply a function named after its
// symbol, sharing the same overload group and FunctionCallInferenceRule
// machinery as any other function with that name.
type Operators struct {
	functions *kinds.FunctionFactory
}

// CreateBinary declares one overload of a binary operator (e.g. "+").
// call describes how a call-site language node is recognized and
// decomposed into arguments; it only needs to be supplied once per
// operator name — later overloads may pass the same value or nil to join
// the existing group without re-registering the composite rule.
func (o *Operators) CreateBinary(name string, left, right kinds.ParameterDetails, result kinds.ParameterDetails, call *kinds.CallSiteInference) *kinds.FunctionType {
	return o.functions.Create(kinds.FunctionDetails{
		Name:                   name,
		InputParameters:        []kinds.ParameterDetails{left, right},
		OutputParameter:        &result,
		CallSiteInference:      call,
		ValidateArgumentGroups: call != nil,
	})
}

// CreateUnary declares one overload of a unary operator.
func (o *Operators) CreateUnary(name string, operand kinds.ParameterDetails, result kinds.ParameterDetails, call *kinds.CallSiteInference) *kinds.FunctionType {
	return o.functions.Create(kinds.FunctionDetails{
		Name:                   name,
		InputParameters:        []kinds.ParameterDetails{operand},
		OutputParameter:        &result,
		CallSiteInference:      call,
		ValidateArgumentGroups: call != nil,
	})
}
