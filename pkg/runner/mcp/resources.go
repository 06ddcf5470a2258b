package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/tmpl/pkg/template"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerTemplatesResource(srv, svc)
	registerTemplateResource(srv, svc)
}

func registerTemplatesResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"tmpl://templates",
		"Templates",
		mcp.WithResourceDescription("All stored templates."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		list, err := svc.ListTemplates(ctx)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{
			"templates": list,
			"count":     len(list),
		})
	})
}

func registerTemplateResource(srv *server.MCPServer, svc *Service) {
	rt := mcp.NewResourceTemplate(
		"tmpl://templates/{id}",
		"Template",
		mcp.WithTemplateDescription("A single template."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(rt, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id, err := resourceID(request.Params.Arguments["id"])
		if err != nil {
			return nil, err
		}
		t, err := svc.TemplateByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, t)
	})
}

// resourceID accepts the id as matched from the URI, which the server may
// hand over as a string or a one-element slice.
func resourceID(v any) (template.ID, error) {
	switch id := v.(type) {
	case string:
		return template.ParseID(id)
	case []string:
		if len(id) == 1 {
			return template.ParseID(id[0])
		}
	}
	return 0, fmt.Errorf("template id is required")
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
