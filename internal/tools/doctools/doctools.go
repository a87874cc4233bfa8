// Package doctools exposes the uploaded-document index and past
// conversation summaries to the assistant.
package doctools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"riabuilder/internal/docs"
	"riabuilder/internal/store"
	"riabuilder/internal/tools"
)

// DocumentStore lists documents and loads their payloads.
type DocumentStore interface {
	ListDocuments() ([]docs.DocumentMeta, error)
	GetDocumentPayload(id string) ([]byte, error)
}

// SummaryStore lists prior conversation summaries.
type SummaryStore interface {
	ListSummaries() ([]store.ConversationSummary, error)
}

// Register adds read_document and list_conversation_summaries to the
// registry.
func Register(r *tools.Registry, documents DocumentStore, summaries SummaryStore) {
	r.MustRegister(readDocumentTool(documents))
	r.MustRegister(listSummariesTool(summaries))
}

func readDocumentTool(documents DocumentStore) *tools.Tool {
	return &tools.Tool{
		Name:        "read_document",
		Description: "Read the text of an uploaded document by filename (case-insensitive, partial names accepted).",
		Category:    tools.CategoryDocuments,
		Schema: tools.ToolSchema{
			Required: []string{"filename"},
			Properties: map[string]tools.Property{
				"filename": {Type: "string", Description: "Name of the document to read"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			filename, err := tools.RequiredString(args, "filename")
			if err != nil {
				return "", err
			}

			index, err := documents.ListDocuments()
			if err != nil {
				return "", fmt.Errorf("failed to list documents: %w", err)
			}
			meta, ok := docs.ResolveByFilename(index, filename)
			if !ok {
				return "", fmt.Errorf("no document matching %q; %d documents available", filename, len(index))
			}

			payload, err := documents.GetDocumentPayload(meta.ID)
			if err != nil {
				return "", fmt.Errorf("failed to load %s: %w", meta.Filename, err)
			}
			extraction, err := docs.ExtractText(meta, payload)
			if err != nil {
				return "", err
			}

			var b strings.Builder
			fmt.Fprintf(&b, "**%s**\n\n%s", meta.Filename, extraction.Text)
			if extraction.Truncated {
				fmt.Fprintf(&b, "\n\n[truncated at %d characters]", docs.MaxExtractChars)
			}
			return b.String(), nil
		},
	}
}

func listSummariesTool(summaries SummaryStore) *tools.Tool {
	return &tools.Tool{
		Name:        "list_conversation_summaries",
		Description: "List summaries of past conversations with their key decisions.",
		Category:    tools.CategoryKnowledge,
		Schema:      tools.ToolSchema{},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			all, err := summaries.ListSummaries()
			if err != nil {
				return "", fmt.Errorf("failed to list summaries: %w", err)
			}
			if len(all) == 0 {
				return "No past conversation summaries yet.", nil
			}

			var b strings.Builder
			fmt.Fprintf(&b, "%d past conversation(s):\n", len(all))
			for _, cs := range all {
				date := time.UnixMilli(cs.CreatedAt).Format("2006-01-02")
				fmt.Fprintf(&b, "\n**%s**: %s\n", date, cs.Summary)
				for _, decision := range cs.KeyDecisions {
					fmt.Fprintf(&b, "- %s\n", decision)
				}
			}
			return strings.TrimSpace(b.String()), nil
		},
	}
}
