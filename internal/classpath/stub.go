// Package classpath loads pre-built declaration stubs for module
// dependencies. Stubs are body-less declaration records serialized per
// dependency and cached on disk keyed by content digest; loading them
// materializes external-origin classes the resolver can hand to the
// declaration builder.
package classpath

// stubSchemaVersion invalidates cached payloads when the wire format
// changes.
const stubSchemaVersion uint16 = 1

// StubSet is the serialized declaration surface of one dependency.
type StubSet struct {
	Schema  uint16
	Module  string
	Classes []StubClass
}

// StubClass mirrors fir.Class without symbols: cross-references are by
// name and re-resolved at load time.
type StubClass struct {
	Name       string
	Kind       uint8 // fir.ClassKind
	Modality   uint8 // fir.Modality
	TypeParams []StubTypeParam
	Supertypes []StubType
	Functions  []StubFunction
	Properties []StubProperty
}

type StubTypeParam struct {
	Name   string
	Bounds []StubType
}

// StubType is a by-name type reference. Param names a type parameter of
// the enclosing class when non-empty; otherwise Name references a class.
type StubType struct {
	Name     string
	Param    string
	Args     []StubType
	Nullable bool
}

type StubFunction struct {
	Name     string
	Modality uint8
	Params   []StubParam
	// Return is the zero StubType for functions without a declared
	// return; the loader materializes that as Unit.
	Return StubType
}

type StubParam struct {
	Name string
	Type StubType
}

type StubProperty struct {
	Name    string
	Mutable bool
	Type    StubType
}
