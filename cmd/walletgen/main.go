// Package main generates the four fee-distribution wallets and writes the
// secrets file plus a .env snippet with their addresses.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"solana-agent-swarm/internal/wallet"
)

// bucket describes one fee-distribution wallet to generate.
type bucket struct {
	Key  string
	Name string
	Pct  string
	Env  string
}

var buckets = []bucket{
	{"bot_trading", "Bot Trading Treasury", "25%", "BOT_TRADING_WALLET"},
	{"infrastructure", "Infrastructure Fund", "25%", "INFRASTRUCTURE_WALLET"},
	{"development", "Development Fund", "25%", "DEVELOPMENT_WALLET"},
	{"builder", "Builder Income", "25%", "BUILDER_WALLET"},
}

// secretsFile is the JSON structure written for the generated keys.
type secretsFile struct {
	GeneratedAt string                     `json:"generated_at"`
	Warning     string                     `json:"warning"`
	Wallets     map[string]*wallet.Keypair `json:"wallets"`
}

func main() {
	outputDir := flag.String("output-dir", ".", "Directory for generated files")
	flag.Parse()

	if err := run(*outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	fmt.Println("Generating 4 wallets for fee distribution...")
	fmt.Println()

	wallets := make(map[string]*wallet.Keypair, len(buckets))
	for _, b := range buckets {
		kp, err := wallet.Generate()
		if err != nil {
			return fmt.Errorf("generate %s wallet: %w", b.Key, err)
		}
		wallets[b.Key] = kp
		fmt.Printf("%s (%s):\n  Address: %s\n\n", b.Name, b.Pct, kp.Address)
	}

	now := time.Now().UTC()

	// Secrets file; addresses and private keys together.
	secrets := secretsFile{
		GeneratedAt: now.Format(time.RFC3339),
		Warning:     "KEEP THIS FILE SECURE - NEVER SHARE PRIVATE KEYS",
		Wallets:     wallets,
	}
	data, err := json.MarshalIndent(secrets, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal secrets: %w", err)
	}
	secretsPath := filepath.Join(outputDir, "wallets_SECRET.json")
	if err := os.WriteFile(secretsPath, data, 0o600); err != nil {
		return fmt.Errorf("write secrets: %w", err)
	}
	fmt.Printf("Private keys saved to: %s (back up securely, do not share)\n", secretsPath)

	// .env snippet with addresses only.
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Fee distribution wallets (generated %s)\n", now.Format("2006-01-02 15:04")))
	for _, b := range buckets {
		sb.WriteString(fmt.Sprintf("\n# %s (%s of fees)\n", b.Name, b.Pct))
		sb.WriteString(fmt.Sprintf("%s=%s\n", b.Env, wallets[b.Key].Address))
	}
	envPath := filepath.Join(outputDir, "wallets.env")
	if err := os.WriteFile(envPath, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write env snippet: %w", err)
	}
	fmt.Printf("Environment snippet saved to: %s\n", envPath)

	return nil
}
