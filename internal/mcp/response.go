package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"sprint-pulse/internal/productive"
	"sprint-pulse/internal/report"
)

// ResponseEnvelope wraps tool data with hints for the calling agent.
type ResponseEnvelope struct {
	Data     any      `json:"data"`
	Guidance []string `json:"guidance,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// WrapResponse renders the envelope as the first text block and each chart as its own block,
// in name order.
func WrapResponse(data any, guidance, warnings []string, charts map[string]string) (*mcp.CallToolResult, error) {
	body, err := json.MarshalIndent(ResponseEnvelope{Data: data, Guidance: guidance, Warnings: warnings}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}

	res := &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: string(body)}}}

	names := make([]string, 0, len(charts))
	for name := range charts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		res.Content = append(res.Content, &mcp.TextContent{Text: charts[name]})
	}
	return res, nil
}

// errorResult turns a failure into a tool-level error so the agent sees the cause.
func errorResult(tool string, err error) *mcp.CallToolResult {
	msg := err.Error()
	var upstream *productive.UpstreamFetchError
	switch {
	case errors.As(err, &upstream):
		msg = "Productive request failed, no partial report was produced: " + msg
		if errors.Is(err, productive.ErrUnauthorized) || errors.Is(err, productive.ErrForbidden) {
			msg += ". Check PRODUCTIVE_API_TOKEN and PRODUCTIVE_ORG_ID."
		}
	case errors.Is(err, report.ErrInvalidInput):
		msg = "Invalid arguments: " + msg
	}
	log.Error().Err(err).Str("tool", tool).Msg("Tool call failed")

	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}
