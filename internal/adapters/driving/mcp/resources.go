package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-sections/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for saved documents.
	uriScheme = "sercha-sections://"

	documentsPath = "documents"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + documentsPath,
		Name:        "documents",
		Description: "Names of all segmented documents",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + documentsPath + "/{name}",
		Name:        "document-sections",
		Description: "Sections of one segmented document",
		MIMEType:    "application/json",
	}, s.handleSectionsResource)
}

// handleDocumentsResource lists saved documents with their resource URIs.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Sections == nil {
		return jsonResult(req.Params.URI, "[]"), nil
	}

	names, err := s.ports.Sections.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	type documentInfo struct {
		Name string `json:"name"`
		URI  string `json:"uri"`
	}

	infos := make([]documentInfo, len(names))
	for i, name := range names {
		infos[i] = documentInfo{Name: name, URI: documentURI(name)}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

// handleSectionsResource returns the sections of one saved document.
func (s *Server) handleSectionsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Sections == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	name := extractDocumentName(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	sections, err := s.ports.Sections.Load(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("loading sections: %w", err)
	}

	data, err := json.MarshalIndent(sections, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling sections: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

func jsonResult(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		}},
	}
}

// documentURI builds sercha-sections://documents/{name}. Names may be file
// paths, so they are path-escaped into a single segment.
func documentURI(name string) string {
	return uriScheme + documentsPath + "/" + url.PathEscape(name)
}

// extractDocumentName reverses documentURI. It returns "" for foreign URIs.
func extractDocumentName(uri string) string {
	const prefix = uriScheme + documentsPath + "/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	name, err := url.PathUnescape(strings.TrimPrefix(uri, prefix))
	if err != nil {
		return ""
	}
	return name
}
