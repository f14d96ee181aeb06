// Package driver wires the compilation pipeline end to end: classpath
// stubs in, serialized syntax trees in, a lowered typed module out. It
// owns parallelism, progress reporting, and the standard phase order;
// the phases themselves live in their own packages.
package driver

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"vela/internal/analysis"
	"vela/internal/builtins"
	"vela/internal/classpath"
	"vela/internal/config"
	"vela/internal/diag"
	"vela/internal/fir"
	"vela/internal/fir/firbuild"
	"vela/internal/observ"
	"vela/internal/phases"
	"vela/internal/scopes"
	"vela/internal/source"
	"vela/internal/syntax"
)

// Input is one source file: the raw content for diagnostics rendering and
// the serialized syntax tree the external parser produced from it.
type Input struct {
	Path   string
	Source []byte
	Tree   []byte
}

// Options configures one compilation.
type Options struct {
	Config         config.Config
	Inputs         []Input
	Classpath      *classpath.StubSet
	Observer       Observer
	MaxDiagnostics int
}

// Result carries everything a caller may want after Compile returns. The
// Bag is populated even when Compile fails partway.
type Result struct {
	Session *fir.Session
	Module  *fir.Module
	FileSet *source.FileSet
	Bag     *diag.Bag
	Timer   *observ.Timer
	Devirt  *analysis.DevirtResult
	Escapes *analysis.EscapeResult
	DCE     *analysis.DCEResult
}

const defaultMaxDiagnostics = 200

// Compile runs the full pipeline over opts.Inputs. A non-nil error means
// the pipeline itself broke (bad input encoding, phase abort); ordinary
// source errors land in Result.Bag with a nil error.
func Compile(ctx context.Context, opts Options) (*Result, error) {
	maxDiags := opts.MaxDiagnostics
	if maxDiags <= 0 {
		maxDiags = defaultMaxDiagnostics
	}
	bag := diag.NewBag(maxDiags)
	reporter := diag.BagReporter{Bag: bag}
	timer := observ.NewTimer()

	session := fir.NewSession()
	blt := builtins.NewSynthesizer(session)
	module := &fir.Module{Name: opts.Config.ModuleName}

	res := &Result{
		Session: session,
		Module:  module,
		FileSet: source.NewFileSet(),
		Bag:     bag,
		Timer:   timer,
	}

	var resolver firbuild.Resolver
	if opts.Classpath != nil {
		opts.Observer.emit(Event{Stage: StageClasspath, Status: StatusWorking})
		done := timer.Begin("classpath")
		loader := classpath.NewLoader(session, blt, reporter)
		loader.Load(opts.Classpath)
		resolver = loader.Index()
		done(fmt.Sprintf("%d classes", loader.Index().Len()))
		opts.Observer.emit(Event{Stage: StageClasspath, Status: StatusDone})
	}

	trees, err := decodeInputs(ctx, opts, res)
	if err != nil {
		return res, err
	}

	buildModule(session, blt, reporter, resolver, module, trees, opts, timer)

	provider := scopes.NewProvider(session, blt, reporter)
	linkDone := timer.Begin("link-overrides")
	opts.Observer.emit(Event{Stage: StageLink, Status: StatusWorking})
	for _, c := range module.Classes {
		provider.LinkOverrides(c)
	}
	linkDone("")
	opts.Observer.emit(Event{Stage: StageLink, Status: StatusDone})

	if err := runPhases(session, blt, provider, reporter, module, opts, res); err != nil {
		return res, err
	}
	return res, nil
}

// decodeInputs registers every file with the FileSet, then decodes the
// serialized trees in parallel. Decoding is pure; everything that touches
// shared state happens before or after the group.
func decodeInputs(ctx context.Context, opts Options, res *Result) ([]*syntax.Node, error) {
	inputs := make([]Input, len(opts.Inputs))
	copy(inputs, opts.Inputs)
	sort.Slice(inputs, func(i, j int) bool { return inputs[i].Path < inputs[j].Path })

	ids := make([]source.FileID, len(inputs))
	for i, in := range inputs {
		ids[i] = res.FileSet.AddVirtual(in.Path, in.Source)
		opts.Observer.emit(Event{Stage: StageDecode, Status: StatusQueued, File: in.Path})
	}

	jobs := opts.Config.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	done := res.Timer.Begin("decode-trees")
	trees := make([]*syntax.Node, len(inputs))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i := range inputs {
		g.Go(func() error {
			opts.Observer.emit(Event{Stage: StageDecode, Status: StatusWorking, File: inputs[i].Path})
			root, _, err := DecodeTree(inputs[i].Tree, ids[i])
			if err != nil {
				opts.Observer.emit(Event{Stage: StageDecode, Status: StatusError, File: inputs[i].Path})
				return fmt.Errorf("%s: %w", inputs[i].Path, err)
			}
			trees[i] = root
			opts.Observer.emit(Event{Stage: StageDecode, Status: StatusDone, File: inputs[i].Path})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	done(fmt.Sprintf("%d files", len(inputs)))
	return trees, nil
}

// buildModule converts the trees into typed declarations. Declaration
// minting must see every file before any body is built, so the two
// passes run over the whole input set back to back. The symbol arena is
// not safe for concurrent writes; this stays sequential.
func buildModule(
	session *fir.Session,
	blt *builtins.Synthesizer,
	reporter diag.Reporter,
	resolver firbuild.Resolver,
	module *fir.Module,
	trees []*syntax.Node,
	opts Options,
	timer *observ.Timer,
) {
	builder := firbuild.NewBuilder(session, blt, reporter, resolver, module)

	declareDone := timer.Begin("declare")
	opts.Observer.emit(Event{Stage: StageDeclare, Status: StatusWorking})
	for _, tree := range trees {
		builder.Declare(tree)
	}
	declareDone("")
	opts.Observer.emit(Event{Stage: StageDeclare, Status: StatusDone})

	buildDone := timer.Begin("build")
	opts.Observer.emit(Event{Stage: StageBuild, Status: StatusWorking})
	for _, tree := range trees {
		builder.Build(tree)
	}
	buildDone("")
	opts.Observer.emit(Event{Stage: StageBuild, Status: StatusDone})

	module.Entry = findEntry(module)
}

// findEntry locates the top-level main function, if the module has one.
func findEntry(module *fir.Module) fir.SymbolID {
	for _, f := range module.Functions {
		if f.Name.Simple() == "main" && len(f.Params) == 0 {
			return f.Symbol
		}
	}
	return fir.NoSymbolID
}

func runPhases(
	session *fir.Session,
	blt *builtins.Synthesizer,
	provider *scopes.Provider,
	reporter diag.Reporter,
	module *fir.Module,
	opts Options,
	res *Result,
) error {
	reg := phases.NewRegistry()
	env := &Env{
		blt:      blt,
		provider: provider,
		cfg:      opts.Config,
		result:   res,
	}
	RegisterStandardPhases(reg, env)

	pctx := phases.NewContext(session, module, reporter)
	for _, name := range reg.Names() {
		pctx.SetEnabled(name, opts.Config.PhaseEnabled(name))
	}

	opts.Observer.emit(Event{Stage: StagePhases, Status: StatusWorking})
	err := reg.RunOrder(StandardOrder(), pctx)
	for _, t := range pctx.Timings {
		res.Timer.Add("phase:"+t.Phase, t.Elapsed)
		opts.Observer.emit(Event{Stage: StagePhases, Status: StatusDone, Phase: t.Phase, Elapsed: t.Elapsed})
	}
	if err != nil {
		opts.Observer.emit(Event{Stage: StagePhases, Status: StatusError})
		return err
	}
	opts.Observer.emit(Event{Stage: StagePhases, Status: StatusDone})
	return nil
}
