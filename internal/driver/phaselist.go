package driver

import (
	"fmt"

	"vela/internal/analysis"
	"vela/internal/builtins"
	"vela/internal/callgraph"
	"vela/internal/config"
	"vela/internal/fir"
	"vela/internal/lower"
	"vela/internal/phases"
	"vela/internal/scopes"
)

// Artifact keys phases publish for their dependents.
const (
	ArtifactCallGraph  = "callgraph"
	ArtifactDataFlow   = "dataflow"
	ArtifactOverriders = "overriders"
	ArtifactDevirt     = "devirt"
)

// escapeMaxIters bounds the interprocedural escape fixpoint.
const escapeMaxIters = 32

// Env carries the pipeline state phases need beyond what phases.Context
// provides: the scope provider, builtins, configuration, and the result
// record being filled in.
type Env struct {
	blt      *builtins.Synthesizer
	provider *scopes.Provider
	cfg      config.Config
	result   *Result
}

// ListingEnv builds an environment good enough to register the standard
// phases for inspection. Running them requires Compile.
func ListingEnv(cfg config.Config) *Env {
	return &Env{cfg: cfg, result: &Result{}}
}

// StandardOrder returns the canonical phase schedule. The registry
// validates it against declared prerequisites before anything runs.
func StandardOrder() []string {
	return []string{
		"callgraph",
		"overriders",
		"devirt-analyze",
		"devirt-apply",
		"dataflow",
		"escape",
		"bridges",
		"typeops",
		"returns",
		"coercions",
		"dce",
		"verify-devirt",
	}
}

// RegisterStandardPhases installs the lowering pipeline into reg.
func RegisterStandardPhases(reg *phases.Registry, env *Env) {
	reg.MustRegister(&phases.Phase{
		Name: "callgraph",
		Desc: "build the static call graph",
		Run: func(ctx *phases.Context) error {
			ctx.StoreArtifact(ArtifactCallGraph, callgraph.Build(ctx.Module))
			return nil
		},
	})

	reg.MustRegister(&phases.Phase{
		Name: "overriders",
		Desc: "index override hierarchies",
		Run: func(ctx *phases.Context) error {
			ctx.StoreArtifact(ArtifactOverriders, analysis.BuildOverriders(ctx.Module, ctx.Session.Symbols))
			return nil
		},
	})

	reg.MustRegister(&phases.Phase{
		Name:    "devirt-analyze",
		Desc:    "resolve virtual call sites to concrete targets",
		Prereqs: []string{"callgraph", "overriders"},
		Run: func(ctx *phases.Context) error {
			graph := mustArtifact[*callgraph.Graph](ctx, ArtifactCallGraph)
			ov := mustArtifact[*analysis.Overriders](ctx, ArtifactOverriders)
			result := analysis.Devirtualize(graph, ov, analysis.DevirtConfig{
				World:        worldModel(env.cfg.World),
				UnfoldFactor: env.cfg.UnfoldFactor,
			})
			ctx.StoreArtifact(ArtifactDevirt, result)
			env.result.Devirt = result
			return nil
		},
	})

	reg.MustRegister(&phases.Phase{
		Name:    "devirt-apply",
		Desc:    "rewrite resolved sites to direct dispatch",
		Prereqs: []string{"devirt-analyze"},
		Run: func(ctx *phases.Context) error {
			result := mustArtifact[*analysis.DevirtResult](ctx, ArtifactDevirt)
			lower.ApplyDevirtualization(ctx.Session, result, ctx.Module)
			return nil
		},
	})

	reg.MustRegister(&phases.Phase{
		Name:    "dataflow",
		Desc:    "collect intraprocedural value flow facts",
		Prereqs: []string{"devirt-apply"},
		Run: func(ctx *phases.Context) error {
			ctx.StoreArtifact(ArtifactDataFlow, callgraph.BuildDataFlow(ctx.Module))
			return nil
		},
	})

	reg.MustRegister(&phases.Phase{
		Name:     "escape",
		Desc:     "classify allocation lifetimes",
		Optional: true,
		Prereqs:  []string{"dataflow"},
		Run: func(ctx *phases.Context) error {
			df := mustArtifact[*callgraph.DataFlow](ctx, ArtifactDataFlow)
			env.result.Escapes = analysis.AnalyzeEscapes(df, escapeMaxIters)
			return nil
		},
	})

	reg.MustRegister(&phases.Phase{
		Name: "bridges",
		Desc: "synthesize erased-signature bridge methods",
		Run: func(ctx *phases.Context) error {
			lower.GenerateBridges(ctx.Session, env.provider, ctx.Reporter, ctx.Module)
			return nil
		},
	})

	reg.MustRegister(&phases.Phase{
		Name:    "typeops",
		Desc:    "fold statically decided type operators",
		Prereqs: []string{"bridges"},
		Run: func(ctx *phases.Context) error {
			lower.LowerTypeOperators(env.provider, env.blt, ctx.Module)
			return nil
		},
	})

	reg.MustRegister(&phases.Phase{
		Name:    "returns",
		Desc:    "normalize function bodies to explicit returns",
		Prereqs: []string{"bridges"},
		Run: func(ctx *phases.Context) error {
			lower.InsertReturns(env.blt, ctx.Module)
			return nil
		},
	})

	reg.MustRegister(&phases.Phase{
		Name:    "coercions",
		Desc:    "drop redundant coercion wrappers",
		Prereqs: []string{"typeops"},
		Run: func(ctx *phases.Context) error {
			lower.CleanupCoercions(ctx.Module)
			return nil
		},
	})

	reg.MustRegister(&phases.Phase{
		Name:    "dce",
		Desc:    "remove unreachable callables",
		Prereqs: []string{"devirt-apply", "bridges"},
		Run: func(ctx *phases.Context) error {
			// The graph is rebuilt so direct calls introduced by the
			// devirtualization rewrite narrow the reachable set.
			graph := callgraph.Build(ctx.Module)
			ov := analysis.BuildOverriders(ctx.Module, ctx.Session.Symbols)
			env.result.DCE = analysis.EliminateDeadCode(ctx.Module, ctx.Session.Symbols, graph, ov, analysis.DCEConfig{
				Policy: rootPolicy(env.cfg.RootPolicy),
				Keep:   resolveKeepList(ctx.Module, env.cfg.Keep),
			})
			return nil
		},
	})

	reg.MustRegister(&phases.Phase{
		Name:    "verify-devirt",
		Desc:    "reject residual virtual calls in closed-world builds",
		Prereqs: []string{"devirt-apply", "dce"},
		Run: func(ctx *phases.Context) error {
			if worldModel(env.cfg.World) != analysis.WorldClosed {
				return nil
			}
			lower.CheckNoResidualVirtualCalls(ctx.Reporter, ctx.Session.Symbols, ctx.Module)
			return nil
		},
	})
}

func mustArtifact[T any](ctx *phases.Context, key string) T {
	v, ok := ctx.Artifact(key)
	if !ok {
		panic(fmt.Sprintf("artifact %q missing despite prerequisite ordering", key))
	}
	return v.(T)
}

func worldModel(s string) analysis.WorldModel {
	if s == "open" {
		return analysis.WorldOpen
	}
	return analysis.WorldClosed
}

func rootPolicy(s string) analysis.RootPolicy {
	if s == "library" {
		return analysis.RootLibrary
	}
	return analysis.RootExecutable
}

// resolveKeepList maps qualified names from the manifest to symbols.
// Names that match nothing are ignored; keeping a symbol that does not
// exist is vacuously satisfied.
func resolveKeepList(module *fir.Module, names []string) []fir.SymbolID {
	if len(names) == 0 {
		return nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var keep []fir.SymbolID
	module.EachCallable(func(d fir.Decl) {
		name := d.DeclName()
		if want[name.String()] || want[name.Path] {
			keep = append(keep, d.DeclSymbol())
		}
	})
	return keep
}
