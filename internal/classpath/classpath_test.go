package classpath

import (
	"testing"

	"vela/internal/builtins"
	"vela/internal/diag"
	"vela/internal/fir"
)

func sampleSet() *StubSet {
	return &StubSet{
		Module: "libx",
		Classes: []StubClass{
			{
				Name:     "Logger",
				Kind:     uint8(fir.ClassKindInterface),
				Modality: uint8(fir.ModalityAbstract),
				Functions: []StubFunction{
					{
						Name:     "log",
						Modality: uint8(fir.ModalityOpen),
						Params:   []StubParam{{Name: "msg", Type: StubType{Name: "String"}}},
					},
				},
			},
			{
				Name:       "Sink",
				Kind:       uint8(fir.ClassKindClass),
				Modality:   uint8(fir.ModalityOpen),
				TypeParams: []StubTypeParam{{Name: "T"}},
				Supertypes: []StubType{{Name: "Logger"}},
				Functions: []StubFunction{
					{Name: "take", Params: []StubParam{{Name: "value", Type: StubType{Param: "T"}}}},
				},
				Properties: []StubProperty{
					{Name: "count", Mutable: true, Type: StubType{Name: "Int"}},
				},
			},
		},
	}
}

func TestCacheRoundTrip(t *testing.T) {
	cache, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key := HashBytes([]byte("libx-1.0"))

	var missing StubSet
	if hit, err := cache.Get(key, &missing); err != nil || hit {
		t.Fatalf("empty cache: hit=%v err=%v", hit, err)
	}

	if err := cache.Put(key, sampleSet()); err != nil {
		t.Fatalf("put: %v", err)
	}
	var got StubSet
	hit, err := cache.Get(key, &got)
	if err != nil || !hit {
		t.Fatalf("get: hit=%v err=%v", hit, err)
	}
	if got.Module != "libx" || len(got.Classes) != 2 {
		t.Fatalf("payload = %+v", got)
	}
	if got.Classes[1].Supertypes[0].Name != "Logger" {
		t.Fatalf("nested refs not preserved")
	}
}

func TestCombineOrderSensitive(t *testing.T) {
	a, b := HashBytes([]byte("a")), HashBytes([]byte("b"))
	content := HashBytes([]byte("mod"))
	if Combine(content, a, b) == Combine(content, b, a) {
		t.Fatalf("dependency order must affect the aggregate digest")
	}
}

func TestLoaderMaterializesStubs(t *testing.T) {
	session := fir.NewSession()
	blt := builtins.NewSynthesizer(session)
	bag := diag.NewBag(10)
	loader := NewLoader(session, blt, diag.BagReporter{Bag: bag})

	loader.Load(sampleSet())
	idx := loader.Index()

	sym, ok := idx.ResolveClass("Sink")
	if !ok {
		t.Fatalf("Sink not resolvable")
	}
	sink := session.Symbols.Class(sym)
	if sink.Origin != fir.OriginStub {
		t.Fatalf("origin = %v", sink.Origin)
	}
	logger := idx.Class("Logger")
	if len(sink.Supertypes) != 1 || sink.Supertypes[0].Class != logger.Symbol {
		t.Fatalf("intra-set supertype did not resolve")
	}

	take := sink.MemberFunctions()[0]
	if take.Body != nil {
		t.Fatalf("stub member has a body")
	}
	if take.Params[0].Type.Kind != fir.TypeParamRef || take.Params[0].Type.Param != sink.TypeParams[0] {
		t.Fatalf("type-parameter reference not re-linked")
	}

	log := logger.MemberFunctions()[0]
	if log.Params[0].Type.Class != blt.MustClass(builtins.NameString).Symbol {
		t.Fatalf("builtin reference not resolved")
	}
	if log.Return.Class != blt.MustClass(builtins.NameUnit).Symbol {
		t.Fatalf("undeclared return = %v, want Unit", log.Return)
	}
	if bag.HasErrors() {
		t.Fatalf("clean stubs produced: %v", bag.Items())
	}
}

func TestLoaderReportsBrokenStub(t *testing.T) {
	session := fir.NewSession()
	blt := builtins.NewSynthesizer(session)
	bag := diag.NewBag(10)
	loader := NewLoader(session, blt, diag.BagReporter{Bag: bag})

	loader.Load(&StubSet{
		Module: "libbroken",
		Classes: []StubClass{{
			Name:       "Orphan",
			Supertypes: []StubType{{Name: "Gone"}},
		}},
	})

	orphan := loader.Index().Class("Orphan")
	if orphan == nil {
		t.Fatalf("broken stub not materialized at all")
	}
	if !orphan.Supertypes[0].IsError() {
		t.Fatalf("dangling reference did not degrade to the error type")
	}
	found := false
	for _, item := range bag.Items() {
		if item.Code == diag.PathBrokenStub {
			found = true
		}
	}
	if !found {
		t.Fatalf("no broken-stub diagnostic")
	}
}
