package syntax

// Kind tags a syntax node. The set is closed: the external parser is
// contracted to produce only these kinds, and the declaration builder
// rejects anything else with a diagnostic rather than a panic.
type Kind uint8

const (
	KindInvalid Kind = iota

	// Structure.
	KindFile
	KindClassDecl
	KindInterfaceDecl
	KindEnumDecl
	KindFunDecl
	KindPropertyDecl
	KindTypeAliasDecl
	KindCtorDecl
	KindEnumEntry

	// Declaration pieces.
	KindName
	KindModifierList
	KindModifier
	KindTypeParamList
	KindTypeParam
	KindParamList
	KindParam
	KindSupertypeList
	KindTypeRef
	KindTypeArgList
	KindDelegateSpec
	KindBody

	// Expressions and statements.
	KindBlock
	KindCall
	KindNameRef
	KindFieldAccess
	KindNew
	KindReturn
	KindAssign
	KindIsCheck
	KindAsCast
	KindLiteral
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindClassDecl:
		return "class"
	case KindInterfaceDecl:
		return "interface"
	case KindEnumDecl:
		return "enum"
	case KindFunDecl:
		return "fun"
	case KindPropertyDecl:
		return "property"
	case KindTypeAliasDecl:
		return "typealias"
	case KindCtorDecl:
		return "constructor"
	case KindEnumEntry:
		return "enum-entry"
	case KindName:
		return "name"
	case KindModifierList:
		return "modifiers"
	case KindModifier:
		return "modifier"
	case KindTypeParamList:
		return "type-params"
	case KindTypeParam:
		return "type-param"
	case KindParamList:
		return "params"
	case KindParam:
		return "param"
	case KindSupertypeList:
		return "supertypes"
	case KindTypeRef:
		return "type-ref"
	case KindTypeArgList:
		return "type-args"
	case KindDelegateSpec:
		return "delegate"
	case KindBody:
		return "body"
	case KindBlock:
		return "block"
	case KindCall:
		return "call"
	case KindNameRef:
		return "name-ref"
	case KindFieldAccess:
		return "field-access"
	case KindNew:
		return "new"
	case KindReturn:
		return "return"
	case KindAssign:
		return "assign"
	case KindIsCheck:
		return "is"
	case KindAsCast:
		return "as"
	case KindLiteral:
		return "literal"
	default:
		return "invalid"
	}
}
