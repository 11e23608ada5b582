package mcpadapter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
	"github.com/kirillkom/compliance-checker/internal/core/usecase"
)

type extractorFake struct{}

func (extractorFake) Extract(_ context.Context, _, _ string, data []byte) string {
	return string(data)
}

func newTestServer() *Server {
	uc := usecase.NewCheckDocumentUseCase(extractorFake{}, nil)
	return NewServer("test", uc, uc)
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = toolCheckCompliance
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	content, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "unexpected content %T", res.Content[0])
	return content.Text
}

func TestCheckComplianceScoresText(t *testing.T) {
	res, err := newTestServer().handleCheck(context.Background(), callRequest(map[string]any{
		"text": "We collect consent, publish a privacy policy, and protect PHI with encryption.",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var report domain.ComplianceReport
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &report))
	assert.Equal(t, 40.0, report.Score)
	assert.Equal(t, []string{"consent", "privacy policy", "PHI", "encryption"}, report.MatchedRules)
	assert.Len(t, report.UnmatchedRules, 6)
}

func TestCheckComplianceScoresBase64File(t *testing.T) {
	res, err := newTestServer().handleCheck(context.Background(), callRequest(map[string]any{
		"filename":       "policy.txt",
		"content_base64": base64.StdEncoding.EncodeToString([]byte("right to delete")),
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var result domain.CheckResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &result))
	assert.Equal(t, "policy.txt", result.Filename)
	assert.Equal(t, domain.FormatText, result.Format)
	assert.Equal(t, 10.0, result.Score)
}

func TestCheckComplianceRejectsBadArguments(t *testing.T) {
	cases := map[string]map[string]any{
		"nothing":          {},
		"missing filename": {"content_base64": base64.StdEncoding.EncodeToString([]byte("x"))},
		"invalid base64":   {"filename": "a.txt", "content_base64": "***"},
	}
	for name, args := range cases {
		res, err := newTestServer().handleCheck(context.Background(), callRequest(args))
		require.NoError(t, err, name)
		assert.True(t, res.IsError, name)
	}
}

type failingScorer struct{}

func (failingScorer) ScoreText(context.Context, string) (domain.ComplianceReport, error) {
	return domain.ComplianceReport{}, domain.WrapError(domain.ErrDegenerateRuleSet, "score document", errors.New("no rules"))
}

func TestCheckComplianceReportsScorerFailure(t *testing.T) {
	uc := usecase.NewCheckDocumentUseCase(extractorFake{}, nil)
	srv := NewServer("test", uc, failingScorer{})

	res, err := srv.handleCheck(context.Background(), callRequest(map[string]any{"text": "consent"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "rule set is empty")
}

func TestListRules(t *testing.T) {
	res, err := newTestServer().handleListRules(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)

	var groups []domain.RuleGroup
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &groups))
	require.Len(t, groups, 2)
	assert.Equal(t, domain.FrameworkGDPR, groups[0].Framework)
	assert.Equal(t, "PHI", groups[1].Rules[0])
}
