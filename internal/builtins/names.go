package builtins

import "strconv"

// Well-known names of the builtin catalogue. The synthesizer only accepts
// these (plus FunctionName(n) for function types); anything else is a
// caller bug surfaced as BltUnknownName.
const (
	NameAny        = "Any"
	NameNothing    = "Nothing"
	NameUnit       = "Unit"
	NameBoolean    = "Boolean"
	NameNumber     = "Number"
	NameInt        = "Int"
	NameLong       = "Long"
	NameDouble     = "Double"
	NameString     = "String"
	NameArray      = "Array"
	NameComparable = "Comparable"
	NameIterable   = "Iterable"
	NameCollection = "Collection"
	NameMutableCollection = "MutableCollection"
	NameList        = "List"
	NameMutableList = "MutableList"
	NameEnum        = "Enum"
)

// CoreModule is the module every builtin declaration claims as its owner.
const CoreModule = "vela.core"

// MaxFunctionArity bounds the FunctionN family. Mirrors the usual
// platform cap; requests beyond it are rejected.
const MaxFunctionArity = 22

// FunctionName returns the well-known name of the function type with the
// given arity ("Function0" ... "Function22").
func FunctionName(arity int) string {
	return "Function" + strconv.Itoa(arity)
}
