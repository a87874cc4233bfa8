package doctools

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riabuilder/internal/docs"
	"riabuilder/internal/store"
	"riabuilder/internal/tools"
)

type fakeDocs struct {
	index    []docs.DocumentMeta
	payloads map[string][]byte
}

func (f *fakeDocs) ListDocuments() ([]docs.DocumentMeta, error) { return f.index, nil }
func (f *fakeDocs) GetDocumentPayload(id string) ([]byte, error) {
	p, ok := f.payloads[id]
	if !ok {
		return nil, fmt.Errorf("document %s: not found", id)
	}
	return p, nil
}

type fakeSummaries struct {
	summaries []store.ConversationSummary
}

func (f *fakeSummaries) ListSummaries() ([]store.ConversationSummary, error) {
	return f.summaries, nil
}

func newRegistry(t *testing.T) (*tools.Registry, *fakeDocs, *fakeSummaries) {
	t.Helper()
	d := &fakeDocs{payloads: map[string][]byte{}}
	s := &fakeSummaries{}
	r := tools.NewRegistry()
	Register(r, d, s)
	return r, d, s
}

func TestReadDocumentByPartialName(t *testing.T) {
	r, d, _ := newRegistry(t)
	d.index = []docs.DocumentMeta{{ID: "1", Filename: "Fee Schedule.md", FileType: "md"}}
	d.payloads["1"] = []byte("# Fees\n1% AUM")

	res := r.Execute(context.Background(), "read_document", map[string]any{"filename": "fee"})
	require.True(t, res.IsSuccess(), "error: %v", res.Error)
	assert.Contains(t, res.Result, "Fee Schedule.md")
	assert.Contains(t, res.Result, "1% AUM")
}

func TestReadDocumentMissing(t *testing.T) {
	r, _, _ := newRegistry(t)

	res := r.Execute(context.Background(), "read_document", map[string]any{"filename": "nope.txt"})
	require.False(t, res.IsSuccess())
	assert.Contains(t, res.Error.Error(), "no document matching")
}

func TestListSummariesEmpty(t *testing.T) {
	r, _, _ := newRegistry(t)

	res := r.Execute(context.Background(), "list_conversation_summaries", nil)
	require.True(t, res.IsSuccess())
	assert.Contains(t, res.Result, "No past conversation summaries")
}

func TestListSummariesRendersDecisions(t *testing.T) {
	r, _, s := newRegistry(t)
	s.summaries = []store.ConversationSummary{
		{Summary: "Chose a custodian.", KeyDecisions: []string{"Use Altruist"}, CreatedAt: 1735689600000},
	}

	res := r.Execute(context.Background(), "list_conversation_summaries", nil)
	require.True(t, res.IsSuccess())
	assert.Contains(t, res.Result, "Chose a custodian.")
	assert.Contains(t, res.Result, "- Use Altruist")
}
