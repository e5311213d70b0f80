package cascade

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"promptpress/internal/diff"
	"promptpress/internal/gen"
	"promptpress/internal/graph"
	"promptpress/internal/spec"
	"promptpress/internal/store"
	"promptpress/internal/ui"
	"promptpress/internal/vcs"
)

// Responses shorter than this after a refinement call are treated as
// "no refinement needed" and discarded.
const minRefinementLength = 100

// Orchestrator drives one edit through detection, confirmation, refinement,
// and propagation. All collaborators are injected at construction; there is
// no ambient state.
type Orchestrator struct {
	store   *store.Store
	graph   *graph.Graph
	cache   *store.BaselineCache
	gen     gen.Generator
	vcs     vcs.VersionControl // nil when no repository is available
	ui      ui.UI
	prompts *gen.PromptBuilder
	opts    gen.Options
}

func NewOrchestrator(s *store.Store, g *graph.Graph, cache *store.BaselineCache, generator gen.Generator, v vcs.VersionControl, u ui.UI, prompts *gen.PromptBuilder, maxTokens int) *Orchestrator {
	if prompts == nil {
		prompts = gen.DefaultPrompts()
	}
	return &Orchestrator{
		store:   s,
		graph:   g,
		cache:   cache,
		gen:     generator,
		vcs:     v,
		ui:      u,
		prompts: prompts,
		opts:    gen.Options{MaxTokens: maxTokens},
	}
}

// Result is the outcome of one cascade or tersify invocation. Partial
// success is represented, not rolled back.
type Result struct {
	Success      bool
	NoChanges    bool
	Cancelled    bool
	UpdatedFiles []string
	Errors       []string
}

func (r *Result) fail(format string, args ...any) {
	r.Success = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Run cascades one edited document: detect what changed against the
// baseline, confirm the working-tree state, refine the edit, regenerate the
// dependent phases, and record the new baseline.
func (o *Orchestrator) Run(ctx context.Context, path string) *Result {
	res := &Result{Success: true}

	current, err := o.store.Read(path)
	if err != nil {
		res.fail("failed to read %s: %v", path, err)
		return res
	}
	doc := spec.Parse(current)
	if doc.Meta == nil {
		res.fail("%s is not a managed spec document (no metadata block)", path)
		return res
	}
	filename := filepath.Base(path)

	// Detecting
	baseline, source := diff.ResolveBaseline(o.vcs, o.cache, o.store.RelPath(path), filename, current)
	change := diff.Compare(baseline, current)
	if !change.HasChanges {
		res.NoChanges = true
		o.ui.NotifyInfo(fmt.Sprintf("No changes detected in %s (baseline: %s).", filename, source))
		return res
	}
	fmt.Printf("🔍 %s: %s\n", filename, change.Summary)

	// Confirming
	if !o.confirmVCS() {
		res.Cancelled = true
		o.ui.NotifyInfo("Cascade cancelled.")
		return res
	}

	// Refining
	current, doc = o.refine(ctx, doc, change, current, path, res)

	// Propagating
	o.propagate(ctx, doc, change, current, res)

	// Committed: the baseline is only moved forward by a successful cascade.
	if res.Success {
		if err := o.cache.Put(filename, current); err != nil {
			fmt.Printf("⚠️  Failed to update baseline: %v\n", err)
		}
	}

	return res
}

// confirmVCS gates the cascade on the working-tree state. Returns false only
// when the user cancels; staging failures are logged and the cascade
// proceeds.
func (o *Orchestrator) confirmVCS() bool {
	if o.vcs == nil {
		return true
	}
	hasChanges, err := o.vcs.HasUnstagedChanges()
	if err != nil {
		fmt.Printf("⚠️  Failed to check version-control status: %v\n", err)
		return true
	}
	if !hasChanges {
		return true
	}
	switch o.ui.ConfirmVCSStatus(true) {
	case ui.ChoiceCancel:
		return false
	case ui.ChoiceStage:
		if err := o.vcs.StageAll(); err != nil {
			fmt.Printf("⚠️  Failed to stage changes: %v\n", err)
		}
	}
	return true
}

// refine asks the generator to extract structured content out of the fresh
// edit. Short responses are discarded; failures never abort the cascade.
func (o *Orchestrator) refine(ctx context.Context, doc *spec.Document, change *diff.Result, current, path string, res *Result) (string, *spec.Document) {
	contextDocs := o.loadMentionContext(change)

	prompt := o.prompts.BuildRefinePrompt(doc.Meta.Phase, current, change.Summary, change.ModifiedSections, contextDocs)
	response, err := o.gen.Generate(ctx, []gen.Message{{Role: "user", Content: prompt}}, o.opts)
	if err != nil {
		fmt.Printf("⚠️  Refinement failed: %v\n", err)
		return current, doc
	}
	if len(response) < minRefinementLength {
		fmt.Println("  -> No refinement needed.")
		return current, doc
	}

	if err := o.store.Write(path, response); err != nil {
		fmt.Printf("⚠️  Failed to write refined document: %v\n", err)
		return current, doc
	}
	res.UpdatedFiles = append(res.UpdatedFiles, path)
	fmt.Println("  -> Source document refined.")
	return response, spec.Parse(response)
}

// loadMentionContext loads the requirement/design documents mentioned in the
// modified-section identifiers and the change summary.
func (o *Orchestrator) loadMentionContext(change *diff.Result) []gen.ContextDoc {
	probe := strings.Join(append(append([]string{}, change.ModifiedSections...), change.Summary), "\n")
	seen := make(map[spec.Ref]bool)
	var docs []gen.ContextDoc
	for _, m := range spec.Parse(probe).Mentions {
		if seen[m.Ref] {
			continue
		}
		seen[m.Ref] = true
		text, err := o.store.Read(o.graph.Resolve(m.Ref))
		if err != nil {
			continue
		}
		docs = append(docs, gen.ContextDoc{Name: m.Ref.String(), Text: text})
	}
	return docs
}

// propagate regenerates the phases downstream of the edited document.
func (o *Orchestrator) propagate(ctx context.Context, doc *spec.Document, change *diff.Result, current string, res *Result) {
	artifact := doc.Meta.Artifact

	switch doc.Meta.Phase {
	case spec.PhaseRequirement:
		designRef := spec.Ref{Artifact: artifact, Phase: spec.PhaseDesign}
		if !o.store.Exists(designRef) {
			o.ui.NotifyInfo(fmt.Sprintf("No design document for %s; nothing to propagate.", artifact))
			return
		}
		newDesign, ok := o.regenerateDesign(ctx, designRef, current, change, res)
		if !ok {
			return
		}
		implRef := spec.Ref{Artifact: artifact, Phase: spec.PhaseImplementation}
		if o.store.Exists(implRef) {
			o.regenerateImplementation(ctx, implRef, current, newDesign, change, res)
		}

	case spec.PhaseDesign:
		reqRef := spec.Ref{Artifact: artifact, Phase: spec.PhaseRequirement}
		reqText, err := o.store.Read(o.store.DocPath(reqRef))
		if err != nil {
			res.fail("cannot cascade from design: requirement document %s does not exist", reqRef)
			return
		}
		implRef := spec.Ref{Artifact: artifact, Phase: spec.PhaseImplementation}
		if !o.store.Exists(implRef) {
			o.ui.NotifyInfo(fmt.Sprintf("No implementation document for %s; nothing to propagate.", artifact))
			return
		}
		o.regenerateImplementation(ctx, implRef, reqText, current, change, res)

	default:
		// Implementation documents and the concept document are terminal.
		o.ui.NotifyInfo("Edited document is terminal; nothing to propagate.")
	}
}

func (o *Orchestrator) regenerateDesign(ctx context.Context, ref spec.Ref, reqText string, change *diff.Result, res *Result) (string, bool) {
	path := o.store.DocPath(ref)
	currentDesign, err := o.store.Read(path)
	if err != nil {
		res.fail("failed to read %s: %v", path, err)
		return "", false
	}

	prompt := o.prompts.BuildDesignPrompt(reqText, currentDesign, change.Summary, change.ModifiedSections)
	newDesign, err := o.gen.Generate(ctx, []gen.Message{{Role: "user", Content: prompt}}, o.opts)
	if err != nil {
		res.fail("failed to regenerate %s: %v", ref, err)
		return "", false
	}
	if err := o.store.Write(path, newDesign); err != nil {
		res.fail("failed to write %s: %v", path, err)
		return "", false
	}
	res.UpdatedFiles = append(res.UpdatedFiles, path)
	fmt.Printf("📝 Regenerated %s\n", ref)
	return newDesign, true
}

func (o *Orchestrator) regenerateImplementation(ctx context.Context, ref spec.Ref, reqText, designText string, change *diff.Result, res *Result) {
	path := o.store.DocPath(ref)
	currentImpl, err := o.store.Read(path)
	if err != nil {
		res.fail("failed to read %s: %v", path, err)
		return
	}

	prompt := o.prompts.BuildImplementationPrompt(reqText, designText, currentImpl, change.Summary)
	newImpl, err := o.gen.Generate(ctx, []gen.Message{{Role: "user", Content: prompt}}, o.opts)
	if err != nil {
		res.fail("failed to regenerate %s: %v", ref, err)
		return
	}
	if err := o.store.Write(path, newImpl); err != nil {
		res.fail("failed to write %s: %v", path, err)
		return
	}
	res.UpdatedFiles = append(res.UpdatedFiles, path)
	fmt.Printf("📝 Regenerated %s\n", ref)
}
