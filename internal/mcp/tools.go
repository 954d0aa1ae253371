package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/netsentinel/sentryview/internal/client"
	"github.com/netsentinel/sentryview/internal/history"
)

// --- Tool definitions ---

func listAlertsTool() *mcp.Tool {
	return &mcp.Tool{
		Name: "list_alerts",
		Description: "List the most recent security alerts from the live feed window, " +
			"newest first. Each entry carries the incident id, threat score, main event, " +
			"status, and the AI analyst summary.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"limit": map[string]any{
					"type":        "number",
					"description": "Maximum alerts to return (default: the whole window)",
				},
			},
		},
	}
}

func getIncidentTool() *mcp.Tool {
	return &mcp.Tool{
		Name: "get_incident",
		Description: "Fetch the full incident record for an alert by incident id, " +
			"including first/last seen timestamps, attacker IP, timeline, and response " +
			"playbook. Falls back to a degraded local record when the backend is unreachable.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"incident_id": map[string]any{
					"type":        "string",
					"description": "Incident id from the live feed",
				},
			},
			"required": []string{"incident_id"},
		},
	}
}

func triggerSimulationTool() *mcp.Tool {
	return &mcp.Tool{
		Name: "trigger_simulation",
		Description: "Trigger a synthetic attack against the monitored network " +
			"(digital twin mode). The resulting alerts arrive on the same live feed.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"kind": map[string]any{
					"type":        "string",
					"description": "Attack kind: portscan or udpflood",
				},
			},
			"required": []string{"kind"},
		},
	}
}

func blockIPTool() *mcp.Tool {
	return &mcp.Tool{
		Name: "mitigate_ip",
		Description: "Redirect a flagged attacker IP to the honeypot. " +
			"This is the same mitigation an operator triggers from the console.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"ip": map[string]any{
					"type":        "string",
					"description": "Attacker IP address to redirect",
				},
				"incident_id": map[string]any{
					"type":        "string",
					"description": "Incident the mitigation belongs to (for the action trail)",
				},
			},
			"required": []string{"ip"},
		},
	}
}

// --- Handlers ---

func (s *Server) handleListAlerts(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	alerts := s.window.Snapshot()

	limit := getInt(req.Params.Arguments, "limit", len(alerts))
	if limit > 0 && limit < len(alerts) {
		alerts = alerts[:limit]
	}

	result := map[string]any{
		"alerts": alerts,
		"total":  len(alerts),
	}
	data, _ := json.MarshalIndent(result, "", "  ")
	return textResult(string(data)), nil
}

func (s *Server) handleGetIncident(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	incidentID := getString(req.Params.Arguments, "incident_id", "")
	if incidentID == "" {
		return errorResult("incident_id is required"), nil
	}

	// Degrade through the resolver when the summary is still in the window;
	// otherwise a backend failure is a plain error.
	for _, summary := range s.window.Snapshot() {
		if summary.IncidentID == incidentID {
			inc := s.res.Resolve(ctx, summary)
			data, _ := json.MarshalIndent(inc, "", "  ")
			return textResult(string(data)), nil
		}
	}

	inc, err := s.api.Incident(ctx, incidentID)
	if err != nil {
		return errorResult(fmt.Sprintf("incident fetch failed: %v", err)), nil
	}
	data, _ := json.MarshalIndent(inc, "", "  ")
	return textResult(string(data)), nil
}

func (s *Server) handleTriggerSimulation(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := getString(req.Params.Arguments, "kind", "")
	switch kind {
	case client.SimPortScan, client.SimUDPFlood:
	default:
		return errorResult(fmt.Sprintf("unknown simulation kind %q (want portscan or udpflood)", kind)), nil
	}

	err := s.api.Simulate(ctx, kind)
	s.record(history.ActionSimulate, kind, "", err)
	if err != nil {
		return errorResult(fmt.Sprintf("simulation failed: %v", err)), nil
	}
	return textResult(fmt.Sprintf("simulation %s triggered; watch the live feed for resulting alerts", kind)), nil
}

func (s *Server) handleBlockIP(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ip := getString(req.Params.Arguments, "ip", "")
	if ip == "" {
		return errorResult("ip is required"), nil
	}
	incidentID := getString(req.Params.Arguments, "incident_id", "")

	err := s.api.Mitigate(ctx, ip)
	s.record(history.ActionMitigate, ip, incidentID, err)
	if err != nil {
		return errorResult(fmt.Sprintf("mitigation failed: %v", err)), nil
	}
	return textResult(fmt.Sprintf("mitigation requested: %s is being rerouted to the honeypot", ip)), nil
}

func (s *Server) record(action, target, incidentID string, err error) {
	if s.hist == nil {
		return
	}
	entry := history.Entry{
		Action:     action,
		Target:     target,
		IncidentID: incidentID,
		Outcome:    history.OutcomeOK,
	}
	if err != nil {
		entry.Outcome = history.OutcomeFailed
		entry.Detail = err.Error()
	}
	s.hist.Record(entry)
}
