package infra

import (
	"fmt"
	"strings"
)

// ANSI Color Codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
)

// PrintBanner displays the startup banner with mode-specific warnings.
func PrintBanner(cfg *Config) {
	mode := strings.ToUpper(cfg.Trading.Mode)
	version := cfg.App.Version

	color := ColorCyan
	if mode == "LIVE" {
		color = ColorRed
	}

	fmt.Println()
	fmt.Printf("%s###########################################################%s\n", color, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", color, ColorReset)
	fmt.Printf("%s#             🚀 Cross-Venue Arb Executor                 #%s\n", color, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", color, ColorReset)
	fmt.Printf("%s#   MODE:    %-36s #%s\n", color, mode, ColorReset)
	fmt.Printf("%s#   SPOT:    %-36s #%s\n", color, cfg.Venues.Upbit.Market, ColorReset)
	fmt.Printf("%s#   HEDGE:   %-36s #%s\n", color, cfg.Venues.Binance.Symbol, ColorReset)
	fmt.Printf("%s#   VERSION: %-36s #%s\n", color, version, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", color, ColorReset)

	if mode == "LIVE" {
		fmt.Printf("%s#   ⚠️  WARNING: YOU ARE TRADING WITH REAL MONEY  ⚠️      #%s\n", ColorRed, ColorReset)
	}

	fmt.Printf("%s###########################################################%s\n", color, ColorReset)
	fmt.Println()
}
