package mcpserver

import (
	"embed"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

//go:embed docs/*.md
var docsFS embed.FS

type document struct {
	resource mcp.Resource
	text     string
}

// ResourceRegistry is the static catalog of readable documents.
type ResourceRegistry struct {
	order []string
	byURI map[string]document
}

// NewResourceRegistry loads the embedded documentation.
func NewResourceRegistry() (*ResourceRegistry, error) {
	r := &ResourceRegistry{byURI: make(map[string]document)}
	for _, d := range []struct {
		uri, name, desc, file string
	}{
		{"agentos://docs/api", "API Documentation", "REST API reference for the AgentOS gateway", "docs/api.md"},
		{"agentos://docs/mcp", "MCP Integration Guide", "How to call AgentOS tools over MCP", "docs/mcp.md"},
	} {
		text, err := docsFS.ReadFile(d.file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", d.file, err)
		}
		r.add(mcp.NewResource(d.uri, d.name,
			mcp.WithResourceDescription(d.desc),
			mcp.WithMIMEType("text/markdown"),
		), string(text))
	}
	return r, nil
}

func (r *ResourceRegistry) add(res mcp.Resource, text string) {
	r.byURI[res.URI] = document{resource: res, text: text}
	r.order = append(r.order, res.URI)
}

// List returns the resources in registration order.
func (r *ResourceRegistry) List() []mcp.Resource {
	out := make([]mcp.Resource, 0, len(r.order))
	for _, uri := range r.order {
		out = append(out, r.byURI[uri].resource)
	}
	return out
}

// Read returns the contents of uri.
func (r *ResourceRegistry) Read(uri string) ([]mcp.ResourceContents, bool) {
	d, ok := r.byURI[uri]
	if !ok {
		return nil, false
	}
	return []mcp.ResourceContents{mcp.TextResourceContents{
		URI:      d.resource.URI,
		MIMEType: d.resource.MIMEType,
		Text:     d.text,
	}}, true
}
