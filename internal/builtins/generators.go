package builtins

import (
	"strconv"

	"vela/internal/fir"
)

type generator func(*Synthesizer, *fir.Class)

// generators populate supertypes and declared members. Fake overrides are
// computed later, at finalization, so generation order stays irrelevant.
// Populated in init: the entries call into the synthesizer, which reads
// this map back, so a literal initializer would form a reference cycle.
var generators map[string]generator

func init() {
	generators = map[string]generator{
		NameAny: func(s *Synthesizer, c *fir.Class) {
			anyT := fir.ClassType(c.Symbol)
			s.newFun(c, "equals", s.Type(NameBoolean), param("other", anyT.WithNullable(true)))
			s.newFun(c, "hashCode", s.Type(NameInt))
			s.newFun(c, "toString", s.Type(NameString))
		},
		NameNothing: func(s *Synthesizer, c *fir.Class) {
			c.Modality = fir.ModalityFinal
		},
		NameUnit: func(s *Synthesizer, c *fir.Class) {
			c.Modality = fir.ModalityFinal
			c.Supertypes = []fir.Type{s.Type(NameAny)}
		},
		NameBoolean: func(s *Synthesizer, c *fir.Class) {
			c.Modality = fir.ModalityFinal
			c.Supertypes = []fir.Type{s.Type(NameAny)}
			boolT := fir.ClassType(c.Symbol)
			s.newFun(c, "not", boolT)
			s.newFun(c, "and", boolT, param("other", boolT))
			s.newFun(c, "or", boolT, param("other", boolT))
		},
		NameNumber: func(s *Synthesizer, c *fir.Class) {
			c.Modality = fir.ModalityAbstract
			c.Supertypes = []fir.Type{s.Type(NameAny)}
			s.newFun(c, "toInt", s.Type(NameInt)).Modality = fir.ModalityAbstract
			s.newFun(c, "toLong", s.Type(NameLong)).Modality = fir.ModalityAbstract
			s.newFun(c, "toDouble", s.Type(NameDouble)).Modality = fir.ModalityAbstract
		},
		NameInt:    numberGenerator(NameInt),
		NameLong:   numberGenerator(NameLong),
		NameDouble: numberGenerator(NameDouble),
		NameString: func(s *Synthesizer, c *fir.Class) {
			c.Modality = fir.ModalityFinal
			strT := fir.ClassType(c.Symbol)
			c.Supertypes = []fir.Type{
				s.Type(NameComparable, strT),
				s.Type(NameAny),
			}
			s.newFun(c, "plus", strT, param("other", s.Type(NameAny).WithNullable(true)))
			s.newFun(c, "length", s.Type(NameInt))
			s.newFun(c, "compareTo", s.Type(NameInt), param("other", strT))
		},
		NameArray: func(s *Synthesizer, c *fir.Class) {
			c.Modality = fir.ModalityFinal
			t := typeParam(c, "T", 0)
			c.TypeParams = []*fir.TypeParameter{t}
			c.Supertypes = []fir.Type{s.Type(NameAny)}
			elem := fir.ParamRef(t)
			s.newFun(c, "get", elem, param("index", s.Type(NameInt)))
			s.newFun(c, "set", s.Type(NameUnit), param("index", s.Type(NameInt)), param("value", elem))
			s.newFun(c, "size", s.Type(NameInt))
		},
		NameComparable: func(s *Synthesizer, c *fir.Class) {
			c.Kind = fir.ClassKindInterface
			c.Modality = fir.ModalityAbstract
			t := typeParam(c, "T", 0)
			c.TypeParams = []*fir.TypeParameter{t}
			c.Supertypes = []fir.Type{s.Type(NameAny)}
			s.newFun(c, "compareTo", s.Type(NameInt), param("other", fir.ParamRef(t))).Modality = fir.ModalityAbstract
		},
		NameIterable: func(s *Synthesizer, c *fir.Class) {
			c.Kind = fir.ClassKindInterface
			c.Modality = fir.ModalityAbstract
			t := typeParam(c, "T", 0)
			c.TypeParams = []*fir.TypeParameter{t}
			c.Supertypes = []fir.Type{s.Type(NameAny)}
		},
		NameCollection: func(s *Synthesizer, c *fir.Class) {
			c.Kind = fir.ClassKindInterface
			c.Modality = fir.ModalityAbstract
			e := typeParam(c, "E", 0)
			c.TypeParams = []*fir.TypeParameter{e}
			elem := fir.ParamRef(e)
			c.Supertypes = []fir.Type{s.Type(NameIterable, elem)}
			s.newFun(c, "size", s.Type(NameInt)).Modality = fir.ModalityAbstract
			s.newFun(c, "isEmpty", s.Type(NameBoolean)).Modality = fir.ModalityAbstract
			s.newFun(c, "contains", s.Type(NameBoolean), param("element", elem)).Modality = fir.ModalityAbstract
		},
		NameMutableCollection: func(s *Synthesizer, c *fir.Class) {
			c.Kind = fir.ClassKindInterface
			c.Modality = fir.ModalityAbstract
			e := typeParam(c, "E", 0)
			c.TypeParams = []*fir.TypeParameter{e}
			elem := fir.ParamRef(e)
			c.Supertypes = []fir.Type{s.Type(NameCollection, elem)}
			s.newFun(c, "add", s.Type(NameBoolean), param("element", elem)).Modality = fir.ModalityAbstract
			s.newFun(c, "remove", s.Type(NameBoolean), param("element", elem)).Modality = fir.ModalityAbstract
		},
		NameList: func(s *Synthesizer, c *fir.Class) {
			c.Kind = fir.ClassKindInterface
			c.Modality = fir.ModalityAbstract
			e := typeParam(c, "E", 0)
			c.TypeParams = []*fir.TypeParameter{e}
			elem := fir.ParamRef(e)
			c.Supertypes = []fir.Type{s.Type(NameCollection, elem)}
			s.newFun(c, "get", elem, param("index", s.Type(NameInt))).Modality = fir.ModalityAbstract
			s.newFun(c, "indexOf", s.Type(NameInt), param("element", elem)).Modality = fir.ModalityAbstract
		},
		NameMutableList: func(s *Synthesizer, c *fir.Class) {
			c.Kind = fir.ClassKindInterface
			c.Modality = fir.ModalityAbstract
			e := typeParam(c, "E", 0)
			c.TypeParams = []*fir.TypeParameter{e}
			elem := fir.ParamRef(e)
			c.Supertypes = []fir.Type{
				s.Type(NameList, elem),
				s.Type(NameMutableCollection, elem),
			}
			s.newFun(c, "set", elem, param("index", s.Type(NameInt)), param("element", elem)).Modality = fir.ModalityAbstract
		},
		NameEnum: func(s *Synthesizer, c *fir.Class) {
			c.Modality = fir.ModalityAbstract
			e := typeParam(c, "E", 0)
			c.TypeParams = []*fir.TypeParameter{e}
			self := fir.ParamRef(e)
			// E : Enum<E>, the usual self-referential bound; the shell handle
			// makes the cycle harmless.
			e.Bounds = []fir.Type{fir.ClassType(c.Symbol, self)}
			c.Supertypes = []fir.Type{
				s.Type(NameComparable, self),
				s.Type(NameAny),
			}
			s.newFun(c, "name", s.Type(NameString))
			s.newFun(c, "ordinal", s.Type(NameInt))
			s.newFun(c, "compareTo", s.Type(NameInt), param("other", self))
		},
	}
}

// numberGenerator builds the concrete numeric classes sharing one shape.
func numberGenerator(name string) generator {
	return func(s *Synthesizer, c *fir.Class) {
		c.Modality = fir.ModalityFinal
		selfT := fir.ClassType(c.Symbol)
		c.Supertypes = []fir.Type{
			s.Type(NameNumber),
			s.Type(NameComparable, selfT),
		}
		s.newFun(c, "plus", selfT, param("other", selfT))
		s.newFun(c, "minus", selfT, param("other", selfT))
		s.newFun(c, "times", selfT, param("other", selfT))
		s.newFun(c, "div", selfT, param("other", selfT))
		s.newFun(c, "compareTo", s.Type(NameInt), param("other", selfT))
		s.newFun(c, "toInt", s.Type(NameInt))
		s.newFun(c, "toLong", s.Type(NameLong))
		s.newFun(c, "toDouble", s.Type(NameDouble))
	}
}

// functionGenerator builds FunctionN<P1..PN, R> with a single invoke.
func functionGenerator(arity int) generator {
	return func(s *Synthesizer, c *fir.Class) {
		c.Kind = fir.ClassKindInterface
		c.Modality = fir.ModalityAbstract
		params := make([]*fir.TypeParameter, 0, arity+1)
		funParams := make([]fir.Param, 0, arity)
		for i := range arity {
			p := typeParam(c, "P"+strconv.Itoa(i+1), i)
			params = append(params, p)
			funParams = append(funParams, param("p"+strconv.Itoa(i+1), fir.ParamRef(p)))
		}
		r := typeParam(c, "R", arity)
		params = append(params, r)
		c.TypeParams = params
		c.Supertypes = []fir.Type{s.Type(NameAny)}
		s.newFun(c, "invoke", fir.ParamRef(r), funParams...).Modality = fir.ModalityAbstract
	}
}

func typeParam(c *fir.Class, name string, index int) *fir.TypeParameter {
	return &fir.TypeParameter{Name: name, Owner: c.Symbol, Index: index}
}
