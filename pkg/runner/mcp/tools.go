package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/tmpl/pkg/template"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerListTemplatesTool(srv, svc)
	registerGetTemplateTool(srv, svc)
	registerCreateTemplateTool(srv, svc)
	registerUpdateTemplateTool(srv, svc)
	registerDeleteTemplateTool(srv, svc)
}

func registerListTemplatesTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_templates",
		mcp.WithDescription("List every stored template."),
	)

	srv.AddTool(tool, func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		list, err := svc.ListTemplates(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"templates": list,
			"count":     len(list),
		})
	})
}

func registerGetTemplateTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_template",
		mcp.WithDescription("Fetch one template by id."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Template identifier."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := requireID(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		t, err := svc.TemplateByID(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(t)
	})
}

func registerCreateTemplateTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"create_template",
		mcp.WithDescription("Create a new template."),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Subject line of the template."),
		),
		mcp.WithString("body",
			mcp.Description("Body text of the template."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Subject string `json:"subject"`
			Body    string `json:"body"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		t, err := svc.CreateTemplate(ctx, args.Subject, args.Body)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(t)
	})
}

func registerUpdateTemplateTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"update_template",
		mcp.WithDescription("Change the subject and/or body of a template. Omitted fields keep their value."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Template identifier."),
		),
		mcp.WithString("subject",
			mcp.Description("New subject line."),
		),
		mcp.WithString("body",
			mcp.Description("New body text."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := requireID(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var args struct {
			Subject *string `json:"subject"`
			Body    *string `json:"body"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		t, err := svc.UpdateTemplate(ctx, UpdateOptions{ID: id, Subject: args.Subject, Body: args.Body})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(t)
	})
}

func registerDeleteTemplateTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"delete_template",
		mcp.WithDescription("Delete a template."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Template identifier."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := requireID(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := svc.DeleteTemplate(ctx, id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{"deleted": id})
	})
}

func requireID(request mcp.CallToolRequest) (template.ID, error) {
	raw, err := request.RequireFloat("id")
	if err != nil {
		return 0, err
	}
	return template.ParseID(fmt.Sprintf("%.0f", raw))
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
