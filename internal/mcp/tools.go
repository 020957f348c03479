package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/hydra-lens/internal/analyzer"
	mcputils "github.com/mvp-joe/hydra-lens/internal/mcp-utils"
	"github.com/mvp-joe/hydra-lens/internal/target"
)

type toolHandler = func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// AddValidateTool registers hydra_validate: one full validation pass over a
// configuration document.
func AddValidateTool(s *server.MCPServer, a *analyzer.Analyzer) {
	tool := mcp.NewTool(
		"hydra_validate",
		mcp.WithDescription("Validate the _target_ references of a Hydra-style YAML configuration document. Resolves each dotted path to a Python definition and checks supplied parameters against its signature. Returns the complete diagnostic set for the document."),
		mcp.WithString("document",
			mcp.Required(),
			mcp.Description("Document identifier. When no text is supplied, this is the file path to read.")),
		mcp.WithNumber("version",
			mcp.Description("Monotonic document version. Passes for superseded versions are discarded. Omit to replace the document's snapshot unconditionally.")),
		mcp.WithString("text",
			mcp.Description("Document text. When present it is recorded as the document's latest snapshot under the given version.")),
	)
	s.AddTool(tool, createValidateHandler(a))
}

func createValidateHandler(a *analyzer.Analyzer) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ValidateRequest
		if err := mcputils.CoerceBindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.Document == "" {
			return mcp.NewToolResultError("document parameter is required"), nil
		}

		resp := ValidateResponse{Document: args.Document}
		if args.Text == "" {
			content, err := os.ReadFile(args.Document)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("cannot read %q: %v", args.Document, err)), nil
			}
			diags, err := a.Run(ctx, args.Document, string(content))
			if err != nil {
				return nil, fmt.Errorf("validation failed: %w", err)
			}
			resp.Diagnostics = diags
		} else {
			version := int32(args.Version)
			if args.Version == 0 {
				// An omitted version always supersedes the stored snapshot.
				version = 1
				if current, ok := a.Documents().Version(args.Document); ok {
					version = current + 1
				}
			}
			diags, err := a.ValidateDocument(ctx, args.Document, version, args.Text)
			switch {
			case errors.Is(err, analyzer.ErrStale):
				resp.Stale = true
			case err != nil:
				return nil, fmt.Errorf("validation failed: %w", err)
			default:
				resp.Diagnostics = diags
			}
		}
		return jsonResult(resp)
	}
}

// AddTargetsTool registers hydra_targets: the ordered target references of
// an open document.
func AddTargetsTool(s *server.MCPServer, a *analyzer.Analyzer) {
	tool := mcp.NewTool(
		"hydra_targets",
		mcp.WithDescription("List the _target_ references of an open configuration document in source order, with their dotted paths, positions, and supplied parameters."),
		mcp.WithString("document",
			mcp.Required(),
			mcp.Description("Identifier of a document previously validated with text.")),
	)
	s.AddTool(tool, createTargetsHandler(a))
}

func createTargetsHandler(a *analyzer.Analyzer) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args TargetsRequest
		if err := mcputils.CoerceBindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.Document == "" {
			return mcp.NewToolResultError("document parameter is required"), nil
		}
		refs, recognized, err := a.Targets(args.Document)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(TargetsResponse{
			Document:   args.Document,
			Recognized: recognized,
			Targets:    refs,
			Total:      len(refs),
		})
	}
}

// AddHoverTool registers hydra_hover: the formatted signature under a cursor.
func AddHoverTool(s *server.MCPServer, a *analyzer.Analyzer) {
	tool := mcp.NewTool(
		"hydra_hover",
		mcp.WithDescription("Return the Python signature and docstring of the _target_ reference at a cursor position, formatted as markdown. Empty contents when nothing hoverable is there."),
		mcp.WithString("document", mcp.Required(), mcp.Description("Identifier of an open document.")),
		mcp.WithNumber("line", mcp.Required(), mcp.Description("Zero-based line.")),
		mcp.WithNumber("character", mcp.Required(), mcp.Description("Zero-based character.")),
	)
	s.AddTool(tool, createHoverHandler(a))
}

func createHoverHandler(a *analyzer.Analyzer) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := positionArgs(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		contents, err := a.Hover(ctx, args.Document, target.Position{Line: args.Line, Character: args.Character})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(HoverResponse{Contents: contents})
	}
}

// AddDefinitionTool registers hydra_definition: the definition site of the
// reference under a cursor.
func AddDefinitionTool(s *server.MCPServer, a *analyzer.Analyzer) {
	tool := mcp.NewTool(
		"hydra_definition",
		mcp.WithDescription("Resolve the _target_ reference at a cursor position to its defining Python file and line. Null location when the reference does not resolve."),
		mcp.WithString("document", mcp.Required(), mcp.Description("Identifier of an open document.")),
		mcp.WithNumber("line", mcp.Required(), mcp.Description("Zero-based line.")),
		mcp.WithNumber("character", mcp.Required(), mcp.Description("Zero-based character.")),
	)
	s.AddTool(tool, createDefinitionHandler(a))
}

func createDefinitionHandler(a *analyzer.Analyzer) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := positionArgs(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		loc, err := a.Definition(ctx, args.Document, target.Position{Line: args.Line, Character: args.Character})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(DefinitionResponse{Location: loc})
	}
}

// AddSetInterpreterTool registers hydra_set_interpreter: swap the interpreter
// whose sys.path extends module resolution.
func AddSetInterpreterTool(s *server.MCPServer, a *analyzer.Analyzer) {
	tool := mcp.NewTool(
		"hydra_set_interpreter",
		mcp.WithDescription("Reconfigure the Python interpreter used for module resolution. Cached resolutions from the previous interpreter are dropped atomically. An empty value removes the interpreter layer."),
		mcp.WithString("interpreter",
			mcp.Description("Interpreter command or absolute path, e.g. 'python3' or '/opt/venv/bin/python'.")),
	)
	s.AddTool(tool, createSetInterpreterHandler(a))
}

func createSetInterpreterHandler(a *analyzer.Analyzer) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args SetInterpreterRequest
		if err := mcputils.CoerceBindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		a.ReconfigureInterpreter(args.Interpreter)
		return jsonResult(SetInterpreterResponse{Interpreter: a.Interpreter()})
	}
}

func positionArgs(request mcp.CallToolRequest) (PositionRequest, error) {
	var args PositionRequest
	if err := mcputils.CoerceBindArguments(request, &args); err != nil {
		return args, fmt.Errorf("invalid arguments: %w", err)
	}
	if args.Document == "" {
		return args, fmt.Errorf("document parameter is required")
	}
	return args, nil
}

// jsonResult marshals a response as a text result, the mcp-go convention.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
