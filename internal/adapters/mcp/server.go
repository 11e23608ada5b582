package mcpadapter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
	"github.com/kirillkom/compliance-checker/internal/core/ports"
)

const (
	toolCheckCompliance = "check_compliance"
	toolListRules       = "list_rules"
)

// Server exposes the compliance pipeline as MCP tools over stdio.
type Server struct {
	checker ports.ComplianceChecker
	scorer  ports.TextScorer
	mcp     *server.MCPServer
}

func NewServer(version string, checker ports.ComplianceChecker, scorer ports.TextScorer) *Server {
	s := &Server{
		checker: checker,
		scorer:  scorer,
		mcp: server.NewMCPServer(
			"compliance-checker",
			version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}

	s.mcp.AddTool(mcp.NewTool(toolCheckCompliance,
		mcp.WithDescription("Score a document against the GDPR and HIPAA keyword checklists. "+
			"Pass either plain text, or a filename with base64-encoded file content (PDF or text)."),
		mcp.WithString("text", mcp.Description("Plain text to score")),
		mcp.WithString("filename", mcp.Description("Original filename; a .pdf extension selects PDF extraction")),
		mcp.WithString("content_base64", mcp.Description("Base64-encoded file bytes")),
		mcp.WithString("content_type", mcp.Description("Optional content type hint, e.g. application/pdf")),
	), s.handleCheck)

	s.mcp.AddTool(mcp.NewTool(toolListRules,
		mcp.WithDescription("List the built-in compliance rules grouped by framework."),
	), s.handleListRules)

	return s
}

func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) handleCheck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := request.GetString("text", "")
	filename := strings.TrimSpace(request.GetString("filename", ""))
	encoded := request.GetString("content_base64", "")

	switch {
	case encoded != "":
		if filename == "" {
			return mcp.NewToolResultError("filename is required with content_base64"), nil
		}
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("content_base64 is not valid base64: %v", err)), nil
		}
		result, err := s.checker.Check(ctx, filename, request.GetString("content_type", ""), data)
		if err != nil {
			return toolError(err), nil
		}
		return jsonResult(result)
	case text != "":
		report, err := s.scorer.ScoreText(ctx, text)
		if err != nil {
			return toolError(err), nil
		}
		return jsonResult(report)
	default:
		return mcp.NewToolResultError("provide either text or filename with content_base64"), nil
	}
}

func (s *Server) handleListRules(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(domain.RuleGroups())
}

func toolError(err error) *mcp.CallToolResult {
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		slog.Error("mcp_tool_failed", "error", err)
	}
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(payload any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}
