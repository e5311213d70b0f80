package cascade

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptpress/internal/gen"
	"promptpress/internal/graph"
	"promptpress/internal/spec"
	"promptpress/internal/store"
	"promptpress/internal/ui"
)

// fakeGenerator returns queued responses and records every prompt.
type fakeGenerator struct {
	prompts   []string
	responses []string
	err       error
}

func (f *fakeGenerator) Generate(_ context.Context, messages []gen.Message, _ gen.Options) (string, error) {
	f.prompts = append(f.prompts, messages[len(messages)-1].Content)
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "ok", nil
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

type fakeVCS struct {
	unstaged    bool
	stageCalled bool
	stageErr    error
}

func (f *fakeVCS) HasUnstagedChanges() (bool, error) { return f.unstaged, nil }

func (f *fakeVCS) StageAll() error {
	f.stageCalled = true
	return f.stageErr
}

func (f *fakeVCS) CommittedContent(string) (string, bool, error) { return "", false, nil }
func (f *fakeVCS) StagedContent(string) (string, bool, error)   { return "", false, nil }

type fakeUI struct {
	choice ui.Choice
	infos  []string
	errors []string
}

func (f *fakeUI) Confirm(string) bool { return true }

func (f *fakeUI) ConfirmVCSStatus(bool) ui.Choice {
	if f.choice == "" {
		return ui.ChoiceContinue
	}
	return f.choice
}

func (f *fakeUI) NotifyInfo(msg string)  { f.infos = append(f.infos, msg) }
func (f *fakeUI) NotifyError(msg string) { f.errors = append(f.errors, msg) }

type fixture struct {
	store *store.Store
	cache *store.BaselineCache
	gen   *fakeGenerator
	vcs   *fakeVCS
	ui    *fakeUI
	orch  *Orchestrator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	s := store.New(root)
	f := &fixture{
		store: s,
		cache: store.NewBaselineCache(root),
		gen:   &fakeGenerator{},
		vcs:   &fakeVCS{},
		ui:    &fakeUI{},
	}
	f.orch = NewOrchestrator(s, graph.New(s), f.cache, f.gen, f.vcs, f.ui, nil, 4096)
	return f
}

func docText(artifact string, phase spec.Phase, body string) string {
	return fmt.Sprintf("---\nartifact: %s\nphase: %s\n---\n\n%s", artifact, phase, body)
}

func (f *fixture) writeDoc(t *testing.T, artifact string, phase spec.Phase, body string) string {
	t.Helper()
	path := f.store.DocPath(spec.Ref{Artifact: artifact, Phase: phase})
	require.NoError(t, f.store.Write(path, docText(artifact, phase, body)))
	return path
}

func TestRun_NoChanges(t *testing.T) {
	f := newFixture(t)
	path := f.writeDoc(t, "auth", spec.PhaseRequirement, "## Overview\n\nStable.\n")
	text, err := f.store.Read(path)
	require.NoError(t, err)
	require.NoError(t, f.cache.Put("auth.req.md", text))

	res := f.orch.Run(context.Background(), path)

	assert.True(t, res.Success)
	assert.True(t, res.NoChanges)
	assert.Empty(t, res.UpdatedFiles)
	assert.Empty(t, f.gen.prompts, "a no-op cascade must issue zero generation calls")
}

func TestRun_RequirementCascadesToBothSiblings(t *testing.T) {
	f := newFixture(t)
	path := f.writeDoc(t, "auth", spec.PhaseRequirement, "## Functional Requirements\n\n- FR-1: New behavior.\n")
	designPath := f.writeDoc(t, "auth", spec.PhaseDesign, "## Design\n\nOld design.\n")
	implPath := f.writeDoc(t, "auth", spec.PhaseImplementation, "## Implementation\n\nOld impl.\n")

	require.NoError(t, f.cache.Put("auth.req.md",
		docText("auth", spec.PhaseRequirement, "## Functional Requirements\n\n- FR-1: Old behavior.\n")))

	newDesign := docText("auth", spec.PhaseDesign, "## Design\n\nRegenerated design body with enough length to count.\n")
	newImpl := docText("auth", spec.PhaseImplementation, "## Implementation\n\nRegenerated impl body with enough length to count.\n")
	// Refinement response is short and therefore discarded.
	f.gen.responses = []string{"No refinement needed.", newDesign, newImpl}

	res := f.orch.Run(context.Background(), path)

	require.True(t, res.Success)
	assert.Equal(t, []string{designPath, implPath}, res.UpdatedFiles)
	require.GreaterOrEqual(t, len(f.gen.prompts), 2)

	// Every propagation prompt carries the change summary.
	summary := "Modified 1 section(s)"
	designPrompt := f.gen.prompts[len(f.gen.prompts)-2]
	implPrompt := f.gen.prompts[len(f.gen.prompts)-1]
	assert.Contains(t, designPrompt, summary)
	assert.Contains(t, implPrompt, summary)
	// The implementation prompt sees the freshly regenerated design.
	assert.Contains(t, implPrompt, "Regenerated design body")

	gotDesign, err := f.store.Read(designPath)
	require.NoError(t, err)
	assert.Equal(t, newDesign, gotDesign)
	gotImpl, err := f.store.Read(implPath)
	require.NoError(t, err)
	assert.Equal(t, newImpl, gotImpl)
}

func TestRun_RequirementWithoutDesignSkips(t *testing.T) {
	f := newFixture(t)
	path := f.writeDoc(t, "auth", spec.PhaseRequirement, "## Overview\n\nEdited.\n")
	require.NoError(t, f.cache.Put("auth.req.md",
		docText("auth", spec.PhaseRequirement, "## Overview\n\nOriginal.\n")))

	res := f.orch.Run(context.Background(), path)

	assert.True(t, res.Success)
	assert.Empty(t, res.UpdatedFiles)
	// One informational skip, no hard errors.
	assert.Empty(t, res.Errors)
	require.NotEmpty(t, f.ui.infos)
	assert.Contains(t, f.ui.infos[len(f.ui.infos)-1], "nothing to propagate")
}

func TestRun_DesignWithoutRequirementFails(t *testing.T) {
	f := newFixture(t)
	path := f.writeDoc(t, "auth", spec.PhaseDesign, "## Design\n\nEdited.\n")
	require.NoError(t, f.cache.Put("auth.design.md",
		docText("auth", spec.PhaseDesign, "## Design\n\nOriginal.\n")))

	res := f.orch.Run(context.Background(), path)

	assert.False(t, res.Success)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], "requirement document")
}

func TestRun_CancelBeforeAnyWrite(t *testing.T) {
	f := newFixture(t)
	path := f.writeDoc(t, "auth", spec.PhaseRequirement, "## Overview\n\nEdited.\n")
	require.NoError(t, f.cache.Put("auth.req.md",
		docText("auth", spec.PhaseRequirement, "## Overview\n\nOriginal.\n")))

	f.vcs.unstaged = true
	f.ui.choice = ui.ChoiceCancel

	res := f.orch.Run(context.Background(), path)

	assert.True(t, res.Success)
	assert.True(t, res.Cancelled)
	assert.Empty(t, res.UpdatedFiles)
	assert.Empty(t, f.gen.prompts)

	// The baseline must not have moved.
	baseline, found := f.cache.Get("auth.req.md")
	require.True(t, found)
	assert.Contains(t, baseline, "Original.")
}

func TestRun_StageChoiceStagesAndContinues(t *testing.T) {
	f := newFixture(t)
	path := f.writeDoc(t, "auth", spec.PhaseRequirement, "## Overview\n\nEdited.\n")
	require.NoError(t, f.cache.Put("auth.req.md",
		docText("auth", spec.PhaseRequirement, "## Overview\n\nOriginal.\n")))

	f.vcs.unstaged = true
	f.ui.choice = ui.ChoiceStage
	f.vcs.stageErr = fmt.Errorf("index locked")

	res := f.orch.Run(context.Background(), path)

	assert.True(t, f.vcs.stageCalled)
	// Staging failure is logged but never aborts the cascade.
	assert.True(t, res.Success)
}

func TestRun_ImplementationIsTerminal(t *testing.T) {
	f := newFixture(t)
	path := f.writeDoc(t, "auth", spec.PhaseImplementation, "## Implementation\n\nEdited.\n")
	require.NoError(t, f.cache.Put("auth.impl.md",
		docText("auth", spec.PhaseImplementation, "## Implementation\n\nOriginal.\n")))

	res := f.orch.Run(context.Background(), path)

	assert.True(t, res.Success)
	assert.Empty(t, res.UpdatedFiles)
	require.NotEmpty(t, f.ui.infos)
	assert.Contains(t, f.ui.infos[len(f.ui.infos)-1], "terminal")
}

func TestRun_RefinementOverwritesSource(t *testing.T) {
	f := newFixture(t)
	path := f.writeDoc(t, "auth", spec.PhaseRequirement, "## Overview\n\nLoose prose about new rules.\n")
	require.NoError(t, f.cache.Put("auth.req.md",
		docText("auth", spec.PhaseRequirement, "## Overview\n\nOriginal.\n")))

	refined := docText("auth", spec.PhaseRequirement,
		"## Overview\n\n- FR-1: The new rules, extracted into a proper labeled requirement item.\n")
	require.GreaterOrEqual(t, len(refined), minRefinementLength)
	f.gen.responses = []string{refined}

	res := f.orch.Run(context.Background(), path)

	require.True(t, res.Success)
	assert.Contains(t, res.UpdatedFiles, path)

	got, err := f.store.Read(path)
	require.NoError(t, err)
	assert.Equal(t, refined, got)

	// The refined content becomes the next baseline.
	baseline, found := f.cache.Get("auth.req.md")
	require.True(t, found)
	assert.Equal(t, refined, baseline)
}

func TestRun_GenerationFailureDuringPropagationIsReported(t *testing.T) {
	f := newFixture(t)
	path := f.writeDoc(t, "auth", spec.PhaseRequirement, "## Overview\n\nEdited.\n")
	f.writeDoc(t, "auth", spec.PhaseDesign, "## Design\n\nOld.\n")
	require.NoError(t, f.cache.Put("auth.req.md",
		docText("auth", spec.PhaseRequirement, "## Overview\n\nOriginal.\n")))

	f.gen.err = fmt.Errorf("model unavailable")

	res := f.orch.Run(context.Background(), path)

	assert.False(t, res.Success)
	assert.Empty(t, res.UpdatedFiles)
	require.NotEmpty(t, res.Errors)
	assert.True(t, strings.Contains(res.Errors[0], "auth.design") ||
		strings.Contains(res.Errors[0], "regenerate"))
}

func TestRun_UnmanagedDocumentFails(t *testing.T) {
	f := newFixture(t)
	path := f.store.SpecsDir() + "/notes.md"
	require.NoError(t, f.store.Write(path, "# Free-form notes, no frontmatter\n"))

	res := f.orch.Run(context.Background(), path)

	assert.False(t, res.Success)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], "not a managed spec document")
}
