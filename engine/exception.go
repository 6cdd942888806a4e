package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDisposed is returned when a goal runs on a disposed session.
	ErrDisposed = errors.New("session disposed")

	// ErrInvalidClause is returned when a term can't be written as a clause.
	ErrInvalidClause = errors.New("invalid clause")
)

// Exception is an error represented by a prolog term.
// The term is a heap independent template so that it can travel across goals and sessions.
type Exception struct {
	term Term
	vars int
}

// NewException creates an exception from a copy of the given term.
func NewException(term Term, h *Heap) Exception {
	t, n := h.freeze(term)
	return Exception{term: t, vars: n}
}

// Term returns the underlying term of the exception. Variables in it are numbered from 0 and don't refer to any heap.
func (e Exception) Term() Term {
	return e.term
}

// instantiate returns a copy of the underlying term on h.
func (e Exception) instantiate(h *Heap) Term {
	return h.instantiate(e.term, e.vars)
}

func (e Exception) Error() string {
	var sb strings.Builder
	_ = WriteTerm(&sb, e.term, nil, WithQuoted(true))
	return sb.String()
}

func errorTerm(formal Term, context Term) Term {
	return atomError.Apply(formal, context)
}

// InstantiationError returns an instantiation error exception.
func InstantiationError(h *Heap) Exception {
	return NewException(errorTerm(Atom("instantiation_error"), varContext), h)
}

// ValidType is the correct type for an argument or one of its components.
type ValidType uint8

// ValidType is one of these values.
const (
	ValidTypeAtom ValidType = iota
	ValidTypeAtomic
	ValidTypeBoolean
	ValidTypeCallable
	ValidTypeCharacter
	ValidTypeCompound
	ValidTypeEvaluable
	ValidTypeInteger
	ValidTypeList
	ValidTypeNumber
	ValidTypePredicateIndicator
	ValidTypePair
	ValidTypeFloat
	ValidTypeVariable
)

// Term returns an Atom for the ValidType.
func (t ValidType) Term() Term {
	return [...]Atom{
		ValidTypeAtom:               "atom",
		ValidTypeAtomic:             "atomic",
		ValidTypeBoolean:            "boolean",
		ValidTypeCallable:           "callable",
		ValidTypeCharacter:          "character",
		ValidTypeCompound:           "compound",
		ValidTypeEvaluable:          "evaluable",
		ValidTypeInteger:            "integer",
		ValidTypeList:               "list",
		ValidTypeNumber:             "number",
		ValidTypePredicateIndicator: "predicate_indicator",
		ValidTypePair:               "pair",
		ValidTypeFloat:              "float",
		ValidTypeVariable:           "variable",
	}[t]
}

// TypeError creates a new type error exception.
func TypeError(validType ValidType, culprit Term, h *Heap) Exception {
	return NewException(errorTerm(Atom("type_error").Apply(validType.Term(), culprit), varContext), h)
}

// ValidDomain is the domain which the procedure defines.
type ValidDomain uint8

// ValidDomain is one of these values.
const (
	ValidDomainCharacterCodeList ValidDomain = iota
	ValidDomainFlagValue
	ValidDomainNonEmptyList
	ValidDomainNotLessThanZero
	ValidDomainOperatorPriority
	ValidDomainOperatorSpecifier
	ValidDomainPrologFlag
	ValidDomainSourceSink
	ValidDomainOrder
	ValidDomainTriggerEvent
	ValidDomainAggregate
)

// Term returns an Atom for the ValidDomain.
func (vd ValidDomain) Term() Term {
	return [...]Atom{
		ValidDomainCharacterCodeList: "character_code_list",
		ValidDomainFlagValue:         "flag_value",
		ValidDomainNonEmptyList:      "non_empty_list",
		ValidDomainNotLessThanZero:   "not_less_than_zero",
		ValidDomainOperatorPriority:  "operator_priority",
		ValidDomainOperatorSpecifier: "operator_specifier",
		ValidDomainPrologFlag:        "prolog_flag",
		ValidDomainSourceSink:        "source_sink",
		ValidDomainOrder:             "order",
		ValidDomainTriggerEvent:      "trigger_event",
		ValidDomainAggregate:         "aggregate_spec",
	}[vd]
}

// DomainError creates a new domain error exception.
func DomainError(validDomain ValidDomain, culprit Term, h *Heap) Exception {
	return NewException(errorTerm(Atom("domain_error").Apply(validDomain.Term(), culprit), varContext), h)
}

// ObjectType is the object on which an operation is to be performed.
type ObjectType uint8

// ObjectType is one of these values.
const (
	ObjectTypeProcedure ObjectType = iota
	ObjectTypeSourceSink
)

// Term returns an Atom for the ObjectType.
func (ot ObjectType) Term() Term {
	return [...]Atom{
		ObjectTypeProcedure:  "procedure",
		ObjectTypeSourceSink: "source_sink",
	}[ot]
}

// ExistenceError creates a new existence error exception.
func ExistenceError(objectType ObjectType, culprit Term, h *Heap) Exception {
	return NewException(errorTerm(Atom("existence_error").Apply(objectType.Term(), culprit), varContext), h)
}

// Operation is the operation to be performed.
type Operation uint8

// Operation is one of these values.
const (
	OperationAccess Operation = iota
	OperationCreate
	OperationModify
	OperationOpen
)

// Term returns an Atom for the Operation.
func (o Operation) Term() Term {
	return [...]Atom{
		OperationAccess: "access",
		OperationCreate: "create",
		OperationModify: "modify",
		OperationOpen:   "open",
	}[o]
}

// PermissionType is the type to which the operation is not permitted to perform.
type PermissionType uint8

// PermissionType is one of these values.
const (
	PermissionTypeFlag PermissionType = iota
	PermissionTypeOperator
	PermissionTypePrivateProcedure
	PermissionTypeStaticProcedure
	PermissionTypeSourceSink
)

// Term returns an Atom for the PermissionType.
func (pt PermissionType) Term() Term {
	return [...]Atom{
		PermissionTypeFlag:             "flag",
		PermissionTypeOperator:         "operator",
		PermissionTypePrivateProcedure: "private_procedure",
		PermissionTypeStaticProcedure:  "static_procedure",
		PermissionTypeSourceSink:       "source_sink",
	}[pt]
}

// PermissionError creates a new permission error exception.
func PermissionError(operation Operation, permissionType PermissionType, culprit Term, h *Heap) Exception {
	return NewException(errorTerm(Atom("permission_error").Apply(operation.Term(), permissionType.Term(), culprit), varContext), h)
}

// Flag is an implementation defined limit.
type Flag uint8

// Flag is one of these values.
const (
	FlagCharacter Flag = iota
	FlagCharacterCode
	FlagMaxArity
	FlagMaxInteger
	FlagMinInteger
)

// Term returns an Atom for the Flag.
func (f Flag) Term() Term {
	return [...]Atom{
		FlagCharacter:     "character",
		FlagCharacterCode: "character_code",
		FlagMaxArity:      "max_arity",
		FlagMaxInteger:    "max_integer",
		FlagMinInteger:    "min_integer",
	}[f]
}

// RepresentationError creates a new representation error exception.
func RepresentationError(limit Flag, h *Heap) Exception {
	return NewException(errorTerm(Atom("representation_error").Apply(limit.Term()), varContext), h)
}

// ExceptionalValue is an evaluable functor's result which is not a number.
type ExceptionalValue uint8

// ExceptionalValue is one of these values.
const (
	ExceptionalValueFloatOverflow ExceptionalValue = iota
	ExceptionalValueIntOverflow
	ExceptionalValueUnderflow
	ExceptionalValueZeroDivisor
	ExceptionalValueUndefined
)

func (ev ExceptionalValue) Error() string {
	return string(ev.Term().(Atom))
}

// Term returns an Atom for the ExceptionalValue.
func (ev ExceptionalValue) Term() Term {
	return [...]Atom{
		ExceptionalValueFloatOverflow: "float_overflow",
		ExceptionalValueIntOverflow:   "int_overflow",
		ExceptionalValueUnderflow:     "underflow",
		ExceptionalValueZeroDivisor:   "zero_divisor",
		ExceptionalValueUndefined:     "undefined",
	}[ev]
}

// EvaluationError creates a new evaluation error exception.
func EvaluationError(ev ExceptionalValue, h *Heap) Exception {
	return NewException(errorTerm(Atom("evaluation_error").Apply(ev.Term()), varContext), h)
}

// SyntaxError creates a new syntax error exception.
func SyntaxError(err error, h *Heap) Exception {
	return NewException(errorTerm(Atom("syntax_error").Apply(Atom(err.Error())), varContext), h)
}

// SystemError creates a new system error exception.
func SystemError(err error) Exception {
	return NewException(errorTerm(Atom("system_error"), Atom(err.Error())), nil)
}

// HaltError is an error to stop the whole session with the exit status.
type HaltError struct {
	Status int
}

func (e *HaltError) Error() string {
	return fmt.Sprintf("halt(%d)", e.Status)
}
