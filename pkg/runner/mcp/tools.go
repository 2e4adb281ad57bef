package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerCaptureTool(srv, svc)
	registerAddEntryTool(srv, svc)
	registerUpdateEntryTool(srv, svc)
	registerPromoteEntryTool(srv, svc)
	registerSetReminderTool(srv, svc)
	registerDeleteEntryTool(srv, svc)
	registerListEntriesTool(srv, svc)
	registerGetEntryTool(srv, svc)
	registerExpenseTotalsTool(srv, svc)
}

func registerCaptureTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"capture",
		mcp.WithDescription("Classify free text into a note, expense or event and store it."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("What happened, in plain words."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := request.RequireString("text")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dto, err := svc.Capture(ctx, text)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func entryFieldOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("kind",
			mcp.Description("Entry kind."),
			mcp.Enum("note", "expense", "event"),
		),
		mcp.WithString("description",
			mcp.Description("Short description of the entry."),
		),
		mcp.WithString("date",
			mcp.Description("Entry date as YYYY-MM-DD, today, yesterday or tomorrow."),
		),
		mcp.WithString("amount",
			mcp.Description("Decimal amount for expenses, e.g. 12.50."),
		),
		mcp.WithString("vendor",
			mcp.Description("Where the money was spent."),
		),
		mcp.WithString("category",
			mcp.Description("Expense category."),
		),
		mcp.WithString("reminder",
			mcp.Description("Reminder time: RFC3339, 'YYYY-MM-DD HH:MM' or 'HH:MM'."),
		),
	}
}

func entryArgs(request mcp.CallToolRequest) AddEntryOptions {
	return AddEntryOptions{
		Kind:        request.GetString("kind", ""),
		Description: request.GetString("description", ""),
		Date:        request.GetString("date", ""),
		Amount:      request.GetString("amount", ""),
		Vendor:      request.GetString("vendor", ""),
		Category:    request.GetString("category", ""),
		Reminder:    request.GetString("reminder", ""),
	}
}

func registerAddEntryTool(srv *server.MCPServer, svc *Service) {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Store an entry exactly as given, without classification."),
	}, entryFieldOptions()...)
	tool := mcp.NewTool("add_entry", opts...)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if _, err := request.RequireString("description"); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dto, err := svc.AddEntry(ctx, entryArgs(request))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerUpdateEntryTool(srv *server.MCPServer, svc *Service) {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Correct fields of an existing entry. Omitted fields are unchanged."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Entry identifier to update."),
		),
	}, entryFieldOptions()...)
	tool := mcp.NewTool("update_entry", opts...)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dto, err := svc.UpdateEntry(ctx, id, entryArgs(request))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerPromoteEntryTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"promote_entry",
		mcp.WithDescription("Turn a note into an event."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Identifier of the note to promote."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dto, err := svc.PromoteEntry(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerSetReminderTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"set_reminder",
		mcp.WithDescription("Schedule a one-shot reminder on an entry, or clear it when 'at' is empty."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Entry identifier."),
		),
		mcp.WithString("at",
			mcp.Description("Reminder time: RFC3339, 'YYYY-MM-DD HH:MM' or 'HH:MM'."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dto, err := svc.SetReminder(ctx, id, request.GetString("at", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerDeleteEntryTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"delete_entry",
		mcp.WithDescription("Permanently delete an entry."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Entry identifier to delete."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := svc.DeleteEntry(ctx, id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{"deleted": id})
	})
}

func registerListEntriesTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_entries",
		mcp.WithDescription("List entries newest first, optionally filtered by text and kind."),
		mcp.WithString("query",
			mcp.Description("Case-insensitive text matched against description, vendor and category."),
		),
		mcp.WithString("kind",
			mcp.Description("Restrict to one kind."),
			mcp.Enum("all", "note", "expense", "event"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of entries to return (default 50)."),
			mcp.Min(1),
			mcp.Max(500),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := request.GetString("query", "")
		kind := request.GetString("kind", "all")
		limit := request.GetInt("limit", 50)

		results, err := svc.ListEntries(ctx, query, kind, limit)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"query":   query,
			"kind":    kind,
			"entries": results,
			"count":   len(results),
		})
	})
}

func registerGetEntryTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_entry",
		mcp.WithDescription("Fetch a single entry by identifier."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Entry identifier to fetch."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		dto, err := svc.EntryByID(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerExpenseTotalsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"expense_totals",
		mcp.WithDescription("Sum expenses per category over a trailing window."),
		mcp.WithString("window",
			mcp.Description("Window such as 7d, 2w or 1mo (default 7d)."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		window := request.GetString("window", "")
		totals, spent, err := svc.Totals(ctx, window)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"window": window,
			"totals": totals,
			"spent":  spent,
		})
	})
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
