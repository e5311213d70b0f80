package graph

import (
	"promptpress/internal/spec"
	"promptpress/internal/store"
)

// Graph resolves symbolic references against the document store and answers
// dependency questions over the declared depends-on edges.
type Graph struct {
	store *store.Store
}

func New(s *store.Store) *Graph {
	return &Graph{store: s}
}

// Resolve maps a reference to its on-disk path. Pure path arithmetic, no IO.
func (g *Graph) Resolve(ref spec.Ref) string {
	return g.store.DocPath(ref)
}

// DependenciesOf computes the transitive depends-on closure of a reference,
// depth-first. The traversal threads an explicit path set copied on recurse;
// a reference already on the current path is not re-descended, which keeps
// the walk finite while leaving the cycle edge itself discoverable by the
// caller through set membership.
func (g *Graph) DependenciesOf(ref spec.Ref) map[spec.Ref]bool {
	deps := make(map[spec.Ref]bool)
	g.collect(ref, map[spec.Ref]bool{ref: true}, deps)
	return deps
}

func (g *Graph) collect(ref spec.Ref, path map[spec.Ref]bool, deps map[spec.Ref]bool) {
	doc, err := g.store.LoadRef(ref)
	if err != nil || doc.Meta == nil {
		return
	}
	for _, raw := range doc.Meta.DependsOn {
		dep, _, ok := spec.ParseRef(raw)
		if !ok {
			continue
		}
		deps[dep] = true
		if path[dep] {
			continue
		}
		next := make(map[spec.Ref]bool, len(path)+1)
		for k := range path {
			next[k] = true
		}
		next[dep] = true
		g.collect(dep, next, deps)
	}
}

// WouldCreateCycle reports whether adding candidate to subject's depends-on
// list would close a dependency loop: a cycle exists iff the subject's own
// reference appears in the resulting transitive-dependency set.
func (g *Graph) WouldCreateCycle(candidate, subject spec.Ref) bool {
	if candidate == subject {
		return true
	}
	return g.DependenciesOf(candidate)[subject]
}

// DependentsOf scans the store for documents whose depends-on list names the
// given reference.
func (g *Graph) DependentsOf(ref spec.Ref) ([]store.StoredDoc, error) {
	docs, err := g.store.List()
	if err != nil {
		return nil, err
	}
	var dependents []store.StoredDoc
	for _, d := range docs {
		if d.Doc.Meta == nil {
			continue
		}
		for _, raw := range d.Doc.Meta.DependsOn {
			dep, _, ok := spec.ParseRef(raw)
			if ok && dep == ref {
				dependents = append(dependents, d)
				break
			}
		}
	}
	return dependents, nil
}
