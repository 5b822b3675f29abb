package feeds

import (
	"context"
	"testing"
	"time"

	"solana-agent-swarm/internal/domain"
)

const wsolMint = "So11111111111111111111111111111111111111112"

func TestCandidateFrameValidation(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		frame   candidateFrame
		wantErr bool
	}{
		{
			name: "valid frame",
			frame: candidateFrame{
				Mint: wsolMint, Symbol: "WSOL", Name: "Wrapped SOL",
				PriceUSD: 150, LiquidityUSD: 50000, Volume24hUSD: 200000,
			},
		},
		{
			name:    "empty mint",
			frame:   candidateFrame{Symbol: "X"},
			wantErr: true,
		},
		{
			name:    "mint not base58",
			frame:   candidateFrame{Mint: "0OIl+/"},
			wantErr: true,
		},
		{
			name:    "mint wrong length",
			frame:   candidateFrame{Mint: "abc"},
			wantErr: true,
		},
		{
			name:    "negative liquidity",
			frame:   candidateFrame{Mint: wsolMint, LiquidityUSD: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := tt.frame.toCandidate(now)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.Mint != tt.frame.Mint {
				t.Errorf("mint = %q, want %q", c.Mint, tt.frame.Mint)
			}
			if !c.DiscoveredAt.Equal(now) {
				t.Errorf("DiscoveredAt = %v, want %v", c.DiscoveredAt, now)
			}
		})
	}
}

func TestStaticSourceReturnsCopies(t *testing.T) {
	orig := &domain.TokenCandidate{Mint: wsolMint, Symbol: "WSOL", PriceUSD: 150}
	src := NewStaticSource([]*domain.TokenCandidate{orig})

	got, err := src.Candidates(context.Background())
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}

	got[0].PriceUSD = 999
	again, _ := src.Candidates(context.Background())
	if again[0].PriceUSD != 150 {
		t.Error("mutating returned candidate affected the source")
	}
}

func TestStaticSafetyMissingMintIsNil(t *testing.T) {
	checker := NewStaticSafety(map[string]*domain.SafetyResult{
		wsolMint: {Mint: wsolMint, Passed: true},
	})

	r, err := checker.Check(context.Background(), wsolMint)
	if err != nil || r == nil || !r.Passed {
		t.Fatalf("Check(%s) = %v, %v", wsolMint, r, err)
	}

	r, err = checker.Check(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("Check(unknown): %v", err)
	}
	if r != nil {
		t.Errorf("expected nil result for unknown mint, got %+v", r)
	}
}

func TestSimExecutorRoundTrip(t *testing.T) {
	exec := NewSimExecutor(42)
	ctx := context.Background()

	buy := &domain.TradeSignal{
		SignalID: "sig-1", Mint: wsolMint, Action: domain.ActionBuy,
		AmountSOL: 0.05, Confidence: 0.8, StopLossPct: 15, TakeProfitPct: 50,
	}
	out, err := exec.Execute(ctx, buy)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if out.PnLSOL != 0 {
		t.Errorf("buy outcome PnL = %v, want 0", out.PnLSOL)
	}

	pos, err := exec.OpenPosition(ctx, wsolMint)
	if err != nil || pos == nil {
		t.Fatalf("OpenPosition = %v, %v", pos, err)
	}
	if pos.AmountSOL != 0.05 {
		t.Errorf("position amount = %v, want 0.05", pos.AmountSOL)
	}

	// Duplicate buy on the same mint is rejected.
	if _, err := exec.Execute(ctx, buy); err == nil {
		t.Error("expected error on duplicate buy")
	}

	sell := &domain.TradeSignal{
		SignalID: "sig-2", Mint: wsolMint, Action: domain.ActionSell,
		Confidence: 0.8, StopLossPct: 15, TakeProfitPct: 50,
	}
	out, err = exec.Execute(ctx, sell)
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if out.NotionalSOL != 0.05 {
		t.Errorf("sell notional = %v, want 0.05", out.NotionalSOL)
	}
	if out.IsWin != (out.PnLSOL > 0) {
		t.Errorf("IsWin = %v inconsistent with PnL %v", out.IsWin, out.PnLSOL)
	}

	// Position is gone after the sell.
	pos, _ = exec.OpenPosition(ctx, wsolMint)
	if pos != nil {
		t.Errorf("expected flat after sell, got %+v", pos)
	}

	// Selling with no position is rejected.
	if _, err := exec.Execute(ctx, sell); err == nil {
		t.Error("expected error selling with no position")
	}
}

func TestSimExecutorRejectsHold(t *testing.T) {
	exec := NewSimExecutor(1)
	_, err := exec.Execute(context.Background(), &domain.TradeSignal{
		SignalID: "sig-3", Mint: wsolMint, Action: domain.ActionHold,
	})
	if err == nil {
		t.Fatal("expected error for hold action")
	}
}
