package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-sections/internal/core/domain"
)

func TestDocumentURI_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		uri  string
	}{
		{name: "plain name", doc: "paper", uri: "sercha-sections://documents/paper"},
		{name: "file path", doc: "/papers/x.md", uri: "sercha-sections://documents/%2Fpapers%2Fx.md"},
		{name: "spaces", doc: "my paper", uri: "sercha-sections://documents/my%20paper"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.uri, documentURI(tt.doc))
			assert.Equal(t, tt.doc, extractDocumentName(tt.uri))
		})
	}
}

func TestExtractDocumentName(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{name: "invalid prefix", uri: "file://documents/paper", expected: ""},
		{name: "missing name", uri: "sercha-sections://documents/", expected: ""},
		{name: "bad escape", uri: "sercha-sections://documents/%zz", expected: ""},
		{name: "empty URI", uri: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractDocumentName(tt.uri))
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil section reader returns empty list", func(t *testing.T) {
		server := newTestServer(t, &Ports{})

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("sercha-sections://documents"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("lists documents", func(t *testing.T) {
		reader := &mockSectionReader{names: []string{"/papers/x.md", "notes"}}
		server := newTestServer(t, &Ports{Sections: reader})

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("sercha-sections://documents"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, `"name": "/papers/x.md"`)
		assert.Contains(t, result.Contents[0].Text, "sercha-sections://documents/%2Fpapers%2Fx.md")
		assert.Contains(t, result.Contents[0].Text, `"name": "notes"`)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		server := newTestServer(t, &Ports{Sections: &mockSectionReader{err: errors.New("disk error")}})

		_, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("sercha-sections://documents"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing documents")
	})
}

func TestServer_handleSectionsResource(t *testing.T) {
	ctx := context.Background()
	reader := &mockSectionReader{documents: map[string][]domain.Section{
		"paper": {{MainTitle: "Paper", SectionTitle: "Abstract", Content: "This paper studies X."}},
	}}

	t.Run("returns sections in serialized form", func(t *testing.T) {
		server := newTestServer(t, &Ports{Sections: reader})

		result, err := server.handleSectionsResource(ctx, makeReadResourceRequest("sercha-sections://documents/paper"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, `"section title": "Abstract"`)
		assert.Contains(t, result.Contents[0].Text, `"content": "This paper studies X."`)
	})

	t.Run("unknown document returns error", func(t *testing.T) {
		server := newTestServer(t, &Ports{Sections: reader})

		_, err := server.handleSectionsResource(ctx, makeReadResourceRequest("sercha-sections://documents/other"))

		require.Error(t, err)
	})

	t.Run("invalid URI returns error", func(t *testing.T) {
		server := newTestServer(t, &Ports{Sections: reader})

		_, err := server.handleSectionsResource(ctx, makeReadResourceRequest("sercha-sections://invalid"))

		require.Error(t, err)
	})

	t.Run("nil section reader returns error", func(t *testing.T) {
		server := newTestServer(t, &Ports{})

		_, err := server.handleSectionsResource(ctx, makeReadResourceRequest("sercha-sections://documents/paper"))

		require.Error(t, err)
	})

	t.Run("load failure is wrapped", func(t *testing.T) {
		server := newTestServer(t, &Ports{Sections: &mockSectionReader{err: errors.New("permission denied")}})

		_, err := server.handleSectionsResource(ctx, makeReadResourceRequest("sercha-sections://documents/paper"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading sections")
	})
}
