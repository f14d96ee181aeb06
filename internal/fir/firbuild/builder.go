// Package firbuild converts parsed syntax trees into raw typed
// declarations. The conversion is two-pass: Declare mints classifier and
// top-level callable symbols for a whole file set so cross-file references
// resolve, then Build populates supertypes, members, and bodies. Full
// overload resolution and type inference stay out; unresolvable references
// degrade to error types with a diagnostic so sibling declarations keep
// building.
package firbuild

import (
	"vela/internal/builtins"
	"vela/internal/diag"
	"vela/internal/fir"
	"vela/internal/syntax"
)

// Resolver supplies classes from outside the current module, typically
// classpath stubs.
type Resolver interface {
	ResolveClass(name string) (fir.SymbolID, bool)
}

// Builder accumulates one module's declarations across files.
type Builder struct {
	session  *fir.Session
	builtins *builtins.Synthesizer
	reporter diag.Reporter
	resolver Resolver
	module   *fir.Module

	classes map[string]*fir.Class
	funcs   map[string]*fir.Function
}

func NewBuilder(session *fir.Session, blt *builtins.Synthesizer, reporter diag.Reporter, resolver Resolver, module *fir.Module) *Builder {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Builder{
		session:  session,
		builtins: blt,
		reporter: reporter,
		resolver: resolver,
		module:   module,
		classes:  make(map[string]*fir.Class),
		funcs:    make(map[string]*fir.Function),
	}
}

// Declare mints symbols for every top-level declaration of one file.
// Symbols exist before any member or body is populated so forward and
// cross-file references are resolvable during Build.
func (b *Builder) Declare(file *syntax.Node) {
	if file.Kind() != syntax.KindFile {
		b.unexpected(file)
		return
	}
	for _, decl := range file.Children() {
		switch decl.Kind() {
		case syntax.KindClassDecl, syntax.KindInterfaceDecl, syntax.KindEnumDecl:
			b.declareClass(decl)
		case syntax.KindFunDecl:
			b.declareTopFun(decl)
		case syntax.KindTypeAliasDecl, syntax.KindPropertyDecl:
			// populated entirely during Build
		default:
			b.unexpected(decl)
		}
	}
}

func (b *Builder) declareClass(decl *syntax.Node) {
	name := declName(decl)
	if name == "" {
		b.unexpected(decl)
		return
	}
	kind := fir.ClassKindClass
	switch decl.Kind() {
	case syntax.KindInterfaceDecl:
		kind = fir.ClassKindInterface
	case syntax.KindEnumDecl:
		kind = fir.ClassKindEnum
	}
	c := &fir.Class{
		DeclBase: fir.DeclBase{
			Name: fir.Name{Module: b.module.Name, Path: name},
			Span: decl.Span(),
		},
		Kind: kind,
	}
	b.session.NewClassSymbol(c)
	b.classes[name] = c
	b.module.Classes = append(b.module.Classes, c)
}

func (b *Builder) declareTopFun(decl *syntax.Node) {
	name := declName(decl)
	if name == "" {
		b.unexpected(decl)
		return
	}
	f := &fir.Function{
		DeclBase: fir.DeclBase{
			Name: fir.Name{Module: b.module.Name, Path: name},
			Span: decl.Span(),
		},
	}
	sym := b.session.Symbols.New()
	f.Symbol = sym
	b.session.Symbols.Bind(sym, f)
	b.funcs[name] = f
	b.module.Functions = append(b.module.Functions, f)
}

// Build fills in every declaration of one file. All files must have been
// through Declare first.
func (b *Builder) Build(file *syntax.Node) {
	if file.Kind() != syntax.KindFile {
		return
	}
	for _, decl := range file.Children() {
		switch decl.Kind() {
		case syntax.KindClassDecl, syntax.KindInterfaceDecl, syntax.KindEnumDecl:
			b.buildClass(decl)
		case syntax.KindFunDecl:
			if f := b.funcs[declName(decl)]; f != nil {
				b.buildFunction(f, nil, decl)
			}
		case syntax.KindTypeAliasDecl:
			b.buildTypeAlias(decl)
		}
	}
}

func (b *Builder) buildClass(decl *syntax.Node) {
	c := b.classes[declName(decl)]
	if c == nil {
		return
	}
	c.Modality, c.Visibility = b.modifiers(decl, defaultClassModality(c.Kind))
	if c.Kind == fir.ClassKindInterface && c.Modality == fir.ModalityFinal {
		diag.Errorf(b.reporter, diag.BuildBadModality, decl.Span(),
			"interface {0} cannot be final", c.Name.String())
		c.Modality = fir.ModalityAbstract
	}

	env := newTypeEnv(nil)
	if list := decl.FirstChild(syntax.KindTypeParamList); list != nil {
		c.TypeParams = b.typeParams(list, c.Symbol, env)
	}
	if supers := decl.FirstChild(syntax.KindSupertypeList); supers != nil {
		for _, ref := range supers.ChildrenOf(syntax.KindTypeRef) {
			c.Supertypes = append(c.Supertypes, b.resolveType(ref, env))
		}
	}
	for _, spec := range decl.ChildrenOf(syntax.KindDelegateSpec) {
		b.buildDelegate(c, spec, env)
	}

	body := decl.FirstChild(syntax.KindBody)
	if body == nil {
		return
	}
	ordinal := 0
	for _, member := range body.Children() {
		switch member.Kind() {
		case syntax.KindFunDecl:
			b.buildMemberFun(c, member, env)
		case syntax.KindPropertyDecl:
			b.buildProperty(c, member, env)
		case syntax.KindCtorDecl:
			b.buildConstructor(c, member, env)
		case syntax.KindEnumEntry:
			b.buildEnumEntry(c, member, ordinal)
			ordinal++
		default:
			b.unexpected(member)
		}
	}
}

func (b *Builder) buildDelegate(c *fir.Class, spec *syntax.Node, env *typeEnv) {
	ref := spec.FirstChild(syntax.KindTypeRef)
	field := spec.FirstChild(syntax.KindName)
	if ref == nil || field == nil {
		b.unexpected(spec)
		return
	}
	iface := b.resolveType(ref, env)
	c.Delegates = append(c.Delegates, fir.DelegateEntry{
		Interface: iface,
		Field:     field.Text(),
	})
	// delegation also implies the supertype edge
	c.Supertypes = append(c.Supertypes, iface)
}

func (b *Builder) buildMemberFun(c *fir.Class, decl *syntax.Node, classEnv *typeEnv) {
	name := declName(decl)
	if name == "" {
		b.unexpected(decl)
		return
	}
	f := &fir.Function{
		DeclBase: fir.DeclBase{
			Name: c.Name.Child(name),
			Span: decl.Span(),
		},
		Owner: c.Symbol,
	}
	sym := b.session.Symbols.New()
	f.Symbol = sym
	b.session.Symbols.Bind(sym, f)
	b.buildFunction(f, classEnv, decl)
	if c.Kind == fir.ClassKindInterface && f.Body == nil {
		f.Modality = fir.ModalityAbstract
	}
	if b.duplicateMember(c, f) {
		diag.Errorf(b.reporter, diag.BuildDuplicateMember, decl.Span(),
			"duplicate member {0} in {1}", name, c.Name.String())
		return
	}
	c.Members = append(c.Members, f)
}

// buildFunction populates an already-bound function record: modifiers,
// type parameters, value parameters, return type, body. The symbol was
// minted by the caller before any of this runs.
func (b *Builder) buildFunction(f *fir.Function, classEnv *typeEnv, decl *syntax.Node) {
	defaultMod := fir.ModalityFinal
	if f.Owner.IsValid() {
		if owner := b.session.Symbols.Class(f.Owner); owner != nil && owner.Kind == fir.ClassKindInterface {
			defaultMod = fir.ModalityOpen
		}
	}
	f.Modality, f.Visibility = b.modifiers(decl, defaultMod)

	env := newTypeEnv(classEnv)
	if list := decl.FirstChild(syntax.KindTypeParamList); list != nil {
		f.TypeParams = b.typeParams(list, f.Symbol, env)
	}
	if list := decl.FirstChild(syntax.KindParamList); list != nil {
		for _, p := range list.ChildrenOf(syntax.KindParam) {
			f.Params = append(f.Params, b.buildParam(p, env))
		}
	}
	if ret := decl.FirstChild(syntax.KindTypeRef); ret != nil {
		f.Return = b.resolveType(ret, env)
	}
	if body := decl.FirstChild(syntax.KindBody); body != nil {
		f.Body = b.buildBody(f, body, env)
	}
}

func (b *Builder) buildParam(p *syntax.Node, env *typeEnv) fir.Param {
	name := p.FirstChild(syntax.KindName)
	ref := p.FirstChild(syntax.KindTypeRef)
	param := fir.Param{Span: p.Span()}
	if name != nil {
		param.Name = name.Text()
	}
	if ref != nil {
		param.Type = b.resolveType(ref, env)
	} else {
		param.Type = fir.ErrorType()
	}
	return param
}

func (b *Builder) buildProperty(c *fir.Class, decl *syntax.Node, classEnv *typeEnv) {
	name := declName(decl)
	if name == "" {
		b.unexpected(decl)
		return
	}
	p := &fir.Property{
		DeclBase: fir.DeclBase{
			Name: c.Name.Child(name),
			Span: decl.Span(),
		},
		Owner:   c.Symbol,
		Mutable: hasModifier(decl, "var"),
	}
	sym := b.session.Symbols.New()
	p.Symbol = sym
	b.session.Symbols.Bind(sym, p)
	p.Modality, p.Visibility = b.modifiers(decl, fir.ModalityFinal)
	if ref := decl.FirstChild(syntax.KindTypeRef); ref != nil {
		p.Type = b.resolveType(ref, classEnv)
	} else {
		diag.Errorf(b.reporter, diag.BuildMissingReturnType, decl.Span(),
			"property {0} has no declared type", p.Name.String())
		p.Type = fir.ErrorType()
	}
	c.Members = append(c.Members, p)
}

func (b *Builder) buildConstructor(c *fir.Class, decl *syntax.Node, classEnv *typeEnv) {
	ctor := &fir.Constructor{
		DeclBase: fir.DeclBase{
			Name: c.Name.Child("<init>"),
			Span: decl.Span(),
		},
		Owner: c.Symbol,
	}
	sym := b.session.Symbols.New()
	ctor.Symbol = sym
	b.session.Symbols.Bind(sym, ctor)
	_, ctor.Visibility = b.modifiers(decl, fir.ModalityFinal)
	if list := decl.FirstChild(syntax.KindParamList); list != nil {
		for _, p := range list.ChildrenOf(syntax.KindParam) {
			ctor.Params = append(ctor.Params, b.buildParam(p, classEnv))
		}
	}
	if body := decl.FirstChild(syntax.KindBody); body != nil {
		fn := &fir.Function{DeclBase: ctor.DeclBase, Params: ctor.Params, Owner: c.Symbol}
		ctor.Body = b.buildBody(fn, body, classEnv)
	}
	c.Members = append(c.Members, ctor)
}

func (b *Builder) buildEnumEntry(c *fir.Class, decl *syntax.Node, ordinal int) {
	if c.Kind != fir.ClassKindEnum {
		b.unexpected(decl)
		return
	}
	name := decl.FirstChild(syntax.KindName)
	if name == nil {
		b.unexpected(decl)
		return
	}
	e := &fir.EnumEntry{
		DeclBase: fir.DeclBase{
			Name: c.Name.Child(name.Text()),
			Span: decl.Span(),
		},
		Ordinal: ordinal,
		Owner:   c.Symbol,
	}
	sym := b.session.Symbols.New()
	e.Symbol = sym
	b.session.Symbols.Bind(sym, e)
	c.Entries = append(c.Entries, e)
	c.Members = append(c.Members, e)
}

func (b *Builder) buildTypeAlias(decl *syntax.Node) {
	name := declName(decl)
	ref := decl.FirstChild(syntax.KindTypeRef)
	if name == "" || ref == nil {
		b.unexpected(decl)
		return
	}
	alias := &fir.TypeAlias{
		DeclBase: fir.DeclBase{
			Name: fir.Name{Module: b.module.Name, Path: name},
			Span: decl.Span(),
		},
	}
	sym := b.session.Symbols.New()
	alias.Symbol = sym
	b.session.Symbols.Bind(sym, alias)
	env := newTypeEnv(nil)
	if list := decl.FirstChild(syntax.KindTypeParamList); list != nil {
		alias.TypeParams = b.typeParams(list, sym, env)
	}
	alias.Aliased = b.resolveType(ref, env)
}

// duplicateMember reports whether the class already has a function with
// f's name and parameter types.
func (b *Builder) duplicateMember(c *fir.Class, f *fir.Function) bool {
	for _, m := range c.MemberFunctions() {
		if m == f || m.Name.Simple() != f.Name.Simple() || len(m.Params) != len(f.Params) {
			continue
		}
		same := true
		for i := range m.Params {
			if !m.Params[i].Type.Equal(f.Params[i].Type) {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}

func (b *Builder) unexpected(n *syntax.Node) {
	diag.Errorf(b.reporter, diag.BuildUnexpectedNode, n.Span(),
		"unexpected {0} node", n.Kind().String())
}

func declName(decl *syntax.Node) string {
	if n := decl.FirstChild(syntax.KindName); n != nil {
		return n.Text()
	}
	return ""
}

func defaultClassModality(kind fir.ClassKind) fir.Modality {
	if kind == fir.ClassKindInterface {
		return fir.ModalityAbstract
	}
	return fir.ModalityFinal
}

func hasModifier(decl *syntax.Node, word string) bool {
	list := decl.FirstChild(syntax.KindModifierList)
	if list == nil {
		return false
	}
	for _, m := range list.ChildrenOf(syntax.KindModifier) {
		if m.Text() == word {
			return true
		}
	}
	return false
}

// modifiers folds a modifier list into modality and visibility, reporting
// contradictory openness keywords.
func (b *Builder) modifiers(decl *syntax.Node, defaultMod fir.Modality) (fir.Modality, fir.Visibility) {
	modality := defaultMod
	visibility := fir.VisibilityPublic
	list := decl.FirstChild(syntax.KindModifierList)
	if list == nil {
		return modality, visibility
	}
	modalitySet := false
	for _, m := range list.ChildrenOf(syntax.KindModifier) {
		var next fir.Modality
		isModality := true
		switch m.Text() {
		case "final":
			next = fir.ModalityFinal
		case "open":
			next = fir.ModalityOpen
		case "abstract":
			next = fir.ModalityAbstract
		case "sealed":
			next = fir.ModalitySealed
		default:
			isModality = false
		}
		if isModality {
			if modalitySet && next != modality {
				diag.Errorf(b.reporter, diag.BuildBadModality, m.Span(),
					"conflicting modality modifier {0}", m.Text())
				continue
			}
			modality = next
			modalitySet = true
			continue
		}
		switch m.Text() {
		case "public":
			visibility = fir.VisibilityPublic
		case "internal":
			visibility = fir.VisibilityInternal
		case "protected":
			visibility = fir.VisibilityProtected
		case "private":
			visibility = fir.VisibilityPrivate
		case "override", "var", "val":
			// carried elsewhere or meaningless for modality
		default:
			diag.Errorf(b.reporter, diag.BuildBadModality, m.Span(),
				"unknown modifier {0}", m.Text())
		}
	}
	return modality, visibility
}
