package reporting

import (
	"fmt"
	"strings"

	"solana-agent-swarm/internal/domain"
)

// RenderLeaderboardCSV renders agent snapshots as CSV string.
func RenderLeaderboardCSV(agents []domain.AgentSnapshot) string {
	var sb strings.Builder

	// Header
	sb.WriteString("agent_id,name,strategy,status,allocated_sol,balance_sol,pnl_sol,roi_pct,win_rate,trades\n")

	// Rows
	for _, a := range agents {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%.6f,%.6f,%.6f,%.4f,%.4f,%d\n",
			a.AgentID,
			a.Name,
			a.Strategy,
			a.Status,
			a.AllocatedSOL,
			a.BalanceSOL,
			a.PnLSOL,
			a.ROIPct,
			a.WinRate,
			a.Trades,
		))
	}

	return sb.String()
}
