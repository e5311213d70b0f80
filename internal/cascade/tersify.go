package cascade

import (
	"context"
	"fmt"
	"path/filepath"

	"promptpress/internal/editor"
	"promptpress/internal/gen"
	"promptpress/internal/spec"
)

// Tersify redistributes duplicated information between a document, the
// documents it references, and the documents that depend on it. The
// generator proposes a change table; each non-empty group of edits results
// in one document write.
func (o *Orchestrator) Tersify(ctx context.Context, path string) *Result {
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
	subject := doc.Ref()

	// Targets keyed by the names the prompt presents so the response's
	// Document column can be resolved back to a path.
	targets := map[string]string{
		subject.String():    path,
		filepath.Base(path): path,
	}

	references := o.loadTersifyRefs(doc, targets)
	dependents, overlap := o.loadTersifyDependents(subject, path, references, targets)
	if len(overlap) > 0 {
		// A document cannot be both an authority and a recipient; drop it
		// from the reference side as well.
		kept := references[:0]
		for _, r := range references {
			if overlap[r.Name] {
				delete(targets, r.Name)
				delete(targets, r.Name+".md")
				continue
			}
			kept = append(kept, r)
		}
		references = kept
	}

	if len(references) == 0 && len(dependents) == 0 {
		o.ui.NotifyInfo("Document has no references or dependents; nothing to tersify.")
		return res
	}

	prompt := o.prompts.BuildTersifyPrompt(subject.String(), current, references, dependents)
	response, err := o.gen.Generate(ctx, []gen.Message{{Role: "user", Content: prompt}}, o.opts)
	if err != nil {
		res.fail("tersify generation failed: %v", err)
		return res
	}

	edits := spec.ParseChangeTable(response)
	if len(edits) == 0 {
		o.ui.NotifyInfo("No tersify edits proposed.")
		return res
	}

	o.applyEditGroups(edits, targets, res)
	return res
}

func (o *Orchestrator) loadTersifyRefs(doc *spec.Document, targets map[string]string) []gen.ContextDoc {
	var refs []gen.ContextDoc
	for _, raw := range doc.Meta.References {
		ref, _, ok := spec.ParseRef(raw)
		if !ok {
			fmt.Printf("⚠️  Skipping unparseable reference %q\n", raw)
			continue
		}
		refPath := o.graph.Resolve(ref)
		text, err := o.store.Read(refPath)
		if err != nil {
			fmt.Printf("⚠️  Skipping unreadable reference %s\n", ref)
			continue
		}
		targets[ref.String()] = refPath
		targets[filepath.Base(refPath)] = refPath
		refs = append(refs, gen.ContextDoc{Name: ref.String(), Text: text})
	}
	return refs
}

// loadTersifyDependents loads every document whose depends-on names the
// subject, excluding the subject itself and any document that already
// appears among the references: the same document cannot act as both an
// authority and a recipient.
func (o *Orchestrator) loadTersifyDependents(subject spec.Ref, sourcePath string, references []gen.ContextDoc, targets map[string]string) ([]gen.ContextDoc, map[string]bool) {
	stored, err := o.graph.DependentsOf(subject)
	if err != nil {
		fmt.Printf("⚠️  Failed to list dependents: %v\n", err)
		return nil, nil
	}

	refNames := make(map[string]bool, len(references))
	for _, r := range references {
		refNames[r.Name] = true
	}

	var dependents []gen.ContextDoc
	overlap := make(map[string]bool)
	for _, d := range stored {
		if d.Path == sourcePath {
			continue
		}
		name := d.Doc.Ref().String()
		if refNames[name] {
			fmt.Printf("⚠️  %s is both a reference and a dependent; excluding it from tersify.\n", name)
			overlap[name] = true
			continue
		}
		text, err := o.store.Read(d.Path)
		if err != nil {
			continue
		}
		targets[name] = d.Path
		targets[filepath.Base(d.Path)] = d.Path
		dependents = append(dependents, gen.ContextDoc{Name: name, Text: text})
	}
	return dependents, overlap
}

// applyEditGroups groups the proposed edits by target document and applies
// each group with one write. Unmatched documents and unmatched removals are
// warnings, not failures.
func (o *Orchestrator) applyEditGroups(edits []spec.Edit, targets map[string]string, res *Result) {
	grouped := make(map[string][]spec.Edit)
	var order []string
	for _, e := range edits {
		docPath, ok := targets[e.Document]
		if !ok {
			fmt.Printf("⚠️  Proposed edit targets unknown document %q; skipped.\n", e.Document)
			continue
		}
		if _, seen := grouped[docPath]; !seen {
			order = append(order, docPath)
		}
		grouped[docPath] = append(grouped[docPath], e)
	}

	for _, docPath := range order {
		text, err := o.store.Read(docPath)
		if err != nil {
			res.fail("failed to read %s: %v", docPath, err)
			continue
		}

		edited := text
		for _, e := range grouped[docPath] {
			var warnings []string
			edited, warnings = editor.Apply(edited, e)
			for _, w := range warnings {
				fmt.Printf("⚠️  %s: %s\n", filepath.Base(docPath), w)
			}
		}
		if edited == text {
			continue
		}

		if err := o.store.Write(docPath, edited); err != nil {
			res.fail("failed to write %s: %v", docPath, err)
			continue
		}
		res.UpdatedFiles = append(res.UpdatedFiles, docPath)
		fmt.Printf("✂️  Tersified %s\n", filepath.Base(docPath))
	}
}
