package mcp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/raidstone/wgevents/guard/region"
	"github.com/raidstone/wgevents/guard/service"
)

func joinIDs(ids []region.RegionID) string {
	if len(ids) == 0 {
		return "(none)"
	}
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	return strings.Join(names, ", ")
}

func formatRegions(label string, result *service.RegionsResult) string {
	if len(result.Regions) == 0 {
		return fmt.Sprintf("%s: no regions", label)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %d region(s)\n", label, len(result.Regions)))
	for _, r := range result.Regions {
		sb.WriteString(fmt.Sprintf("- %s (priority %d)", r.ID, r.Priority))
		if len(r.Flags) > 0 {
			flags := make([]string, 0, len(r.Flags))
			for k, v := range r.Flags {
				flags = append(flags, k+"="+v)
			}
			sort.Strings(flags)
			sb.WriteString(" [" + strings.Join(flags, ", ") + "]")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatActor(a *service.ActorInfo) string {
	return fmt.Sprintf("%s (%s) at %s in %s", a.Name, a.ID, a.Position, joinIDs(a.Regions))
}

func formatMoveResult(result *service.MoveResult) string {
	var sb strings.Builder
	if result.Success {
		sb.WriteString("✓ Move successful")
	} else {
		sb.WriteString("✗ Move denied")
	}
	if result.Message != "" {
		sb.WriteString(": " + result.Message)
	}
	sb.WriteString("\n")
	if result.Actor != nil {
		sb.WriteString(formatActor(result.Actor) + "\n")
	}
	return sb.String()
}

func formatMembership(result *service.MembershipResult) string {
	verdict := "NOT in"
	if result.Member {
		verdict = "in"
	}
	return fmt.Sprintf("Actor %s is %s %s of [%s]\nCurrent regions: %s",
		result.Actor, verdict, result.Mode, strings.Join(result.Required, ", "), joinIDs(result.Current))
}
