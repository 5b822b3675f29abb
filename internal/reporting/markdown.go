package reporting

import (
	"fmt"
	"strings"
	"time"

	"solana-agent-swarm/internal/domain"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Swarm Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Agents: %d active / %d total (cap %d)\n\n",
		r.Swarm.ActiveAgents, r.Swarm.TotalAgents, r.Swarm.MaxAgents))

	// Treasury
	sb.WriteString("## Treasury\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Available SOL | %.6f |\n", r.Treasury.AvailableSOL))
	sb.WriteString(fmt.Sprintf("| Allocated SOL | %.6f |\n", r.Treasury.AllocatedSOL))
	sb.WriteString(fmt.Sprintf("| Realized P&L SOL | %.6f |\n", r.Treasury.RealizedPnL))
	sb.WriteString(fmt.Sprintf("| Utilization | %.2f%% |\n", r.Treasury.UtilizationPct))
	sb.WriteString(fmt.Sprintf("| Aggregate ROI | %.2f%% |\n", r.Treasury.AggregateROI))
	sb.WriteString("\n")

	// Strategy breakdown
	sb.WriteString("## Strategy Breakdown\n\n")
	if len(r.Swarm.ByStrategy) > 0 {
		sb.WriteString("| Strategy | Agents | Target | Capital SOL | P&L SOL | Avg WinRate |\n")
		sb.WriteString("|----------|--------|--------|-------------|---------|-------------|\n")
		for _, strategy := range domain.Strategies {
			st, ok := r.Swarm.ByStrategy[strategy]
			if !ok {
				continue
			}
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | %.6f | %.6f | %.4f |\n",
				strategy, st.Count, st.Target, st.CapitalSOL, st.PnLSOL, st.AvgWinRate))
		}
	} else {
		sb.WriteString("No agents spawned.\n")
	}
	sb.WriteString("\n")

	// Leaderboard
	sb.WriteString("## Agent Leaderboard\n\n")
	if len(r.Leaderboard) > 0 {
		sb.WriteString("| Agent | Strategy | Status | Balance SOL | P&L SOL | ROI | WinRate | Trades |\n")
		sb.WriteString("|-------|----------|--------|-------------|---------|-----|---------|--------|\n")
		for _, a := range r.Leaderboard {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %.6f | %.6f | %.2f%% | %.4f | %d |\n",
				a.Name, a.Strategy, a.Status, a.BalanceSOL, a.PnLSOL, a.ROIPct, a.WinRate, a.Trades))
		}
	} else {
		sb.WriteString("No agents to rank.\n")
	}
	sb.WriteString("\n")

	// Fees
	sb.WriteString("## Fee Collection\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Collected SOL | %.6f |\n", r.Fees.TotalCollectedSOL))
	sb.WriteString(fmt.Sprintf("| Distributions | %d |\n", r.Fees.DistributionCount))
	sb.WriteString(fmt.Sprintf("| Avg Fee SOL | %.6f |\n", r.Fees.AvgFeeSOL))
	sb.WriteString(fmt.Sprintf("| Bot Trading Total | %.6f |\n", r.Fees.BotTradingTotal))
	sb.WriteString(fmt.Sprintf("| Infrastructure Total | %.6f |\n", r.Fees.InfrastructureTotal))
	sb.WriteString(fmt.Sprintf("| Development Total | %.6f |\n", r.Fees.DevelopmentTotal))
	sb.WriteString(fmt.Sprintf("| Builder Total | %.6f |\n", r.Fees.BuilderTotal))
	sb.WriteString("\n")

	// Flywheel
	sb.WriteString("## Flywheel Estimates\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Bot Trading Capital SOL | %.6f |\n", r.Flywheel.BotTradingCapitalSOL))
	sb.WriteString(fmt.Sprintf("| Additional Trades Enabled | %d |\n", r.Flywheel.TradesEnabled))
	sb.WriteString(fmt.Sprintf("| Potential Recursive Fees SOL | %.6f |\n", r.Flywheel.PotentialFeesSOL))
	sb.WriteString(fmt.Sprintf("| Flywheel Multiplier | %.4f |\n", r.Flywheel.Multiplier))
	sb.WriteString(fmt.Sprintf("| Infra Runway Days | %.1f |\n", r.Flywheel.InfraRunwayDays))
	sb.WriteString(fmt.Sprintf("| Dev Hours Funded | %.1f |\n", r.Flywheel.DevHoursFunded))
	sb.WriteString("\n")

	return sb.String()
}
