// Package ui holds the ANSI console helpers: the banner, the redrawn
// progress line, and the result blocks. Format here is presentation only and
// not part of the solver's contract.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/keyhunter/bsgs/pkg/bsgs"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorRed    = "\033[31m"
	ColorPurple = "\033[35m"
	ColorBold   = "\033[1m"
	ColorDim    = "\033[2m"
)

// PrintBanner shows the startup header.
func PrintBanner(version string) {
	fmt.Println()
	fmt.Printf("%s%s", ColorCyan, ColorBold)
	fmt.Println("  ╔══════════════════════════════════════════════════════════╗")
	fmt.Println("  ║  ██████╗ ███████╗ ██████╗ ███████╗                       ║")
	fmt.Println("  ║  ██╔══██╗██╔════╝██╔════╝ ██╔════╝                       ║")
	fmt.Println("  ║  ██████╔╝███████╗██║  ███╗███████╗                       ║")
	fmt.Println("  ║  ██╔══██╗╚════██║██║   ██║╚════██║                       ║")
	fmt.Println("  ║  ██████╔╝███████║╚██████╔╝███████║                       ║")
	fmt.Println("  ║  ╚═════╝ ╚══════╝ ╚═════╝ ╚══════╝                       ║")
	fmt.Println("  ╠══════════════════════════════════════════════════════════╣")
	fmt.Printf("  ║%s   Baby-Step Giant-Step Key Search %s• v%s%s                 ║\n", ColorYellow, ColorDim, version, ColorCyan+ColorBold)
	fmt.Println("  ╚══════════════════════════════════════════════════════════╝")
	fmt.Print(ColorReset)
	fmt.Println()
}

// PrintConfig echoes the run configuration.
func PrintConfig(puzzle int, pubKey string, workers int, m uint64) {
	fmt.Printf("%s[+]%s Started: %s%s%s\n", ColorYellow+ColorBold, ColorReset+ColorGreen,
		ColorYellow, time.Now().Format("2006-01-02 15:04:05"), ColorReset)
	fmt.Printf("[+] Puzzle: %d (range 2^%d to 2^%d-1)\n", puzzle, puzzle-1, puzzle)
	fmt.Printf("[+] Public key: %s\n", pubKey)
	fmt.Printf("[+] Using %d CPU cores\n", workers)
	fmt.Printf("[+] Baby steps (m): %s\n", FormatNumber(m))
}

// Statusf prints a "[+]" status line.
func Statusf(format string, args ...any) {
	fmt.Printf("[+] "+format+"\n", args...)
}

// PrintProgress redraws the in-place progress line for the current phase.
func PrintProgress(phase bsgs.Phase, stats bsgs.Stats, frame int) {
	spinners := []string{"◐", "◓", "◑", "◒"}
	spinner := spinners[frame%len(spinners)]

	fmt.Printf("\r    %s%s%s %s%-9s%s │ %s%s%s steps │ %s%s%s │ %s",
		ColorCyan, spinner, ColorReset,
		ColorPurple+ColorBold, phase, ColorReset,
		ColorYellow, FormatNumber(stats.Steps), ColorReset,
		ColorGreen+ColorBold, FormatStepRate(stats.StepRate), ColorReset,
		FormatDuration(time.Duration(stats.ElapsedSecs*float64(time.Second))))
}

// ClearLine clears the current line.
func ClearLine() {
	fmt.Print("\r" + strings.Repeat(" ", 94) + "\r")
}

// PrintSuccess shows the recovered key.
func PrintSuccess(res *bsgs.Result) {
	fmt.Printf("\n    %s%s╔══════════════════════════════════════════════════════════╗%s\n", ColorGreen, ColorBold, ColorReset)
	fmt.Printf("    %s%s║                  ✨ KEY FOUND! ✨                        ║%s\n", ColorGreen, ColorBold, ColorReset)
	fmt.Printf("    %s%s╚══════════════════════════════════════════════════════════╝%s\n\n", ColorGreen, ColorBold, ColorReset)

	fmt.Printf("    %s🔑 PRIVATE KEY%s\n", ColorPurple+ColorBold, ColorReset)
	fmt.Printf("       %s%s%s\n", ColorYellow, res.Key.Text(10), ColorReset)
	fmt.Printf("       %s0x%x%s\n\n", ColorYellow, res.Key, ColorReset)

	fmt.Printf("    %s💼 WIF%s\n", ColorCyan+ColorBold, ColorReset)
	fmt.Printf("       %s%s%s\n\n", ColorGreen, res.WIF, ColorReset)

	fmt.Printf("    %s₿ ADDRESS%s\n", ColorCyan+ColorBold, ColorReset)
	fmt.Printf("       %s%s%s%s\n\n", ColorGreen, ColorBold, res.Address, ColorReset)

	fmt.Printf("    %s⏱   %s%s   %s│   %s📊  %s%s giant steps%s\n\n",
		ColorCyan, ColorReset+ColorBold, FormatDuration(res.Elapsed),
		ColorDim,
		ColorPurple, ColorReset+ColorBold, FormatNumber(res.GiantSteps),
		ColorReset)
	fmt.Printf("    %s%s⚠  KEEP YOUR PRIVATE KEY SECRET!%s\n", ColorRed, ColorBold, ColorReset)
}

// PrintNotFound reports a clean range exhaustion.
func PrintNotFound(elapsed time.Duration, steps uint64) {
	fmt.Printf("\n%s[!] Key not found in the specified range%s\n", ColorRed+ColorBold, ColorReset)
	fmt.Printf("[+] Giant steps probed: %s\n", FormatNumber(steps))
	fmt.Printf("[+] Time elapsed: %s\n", FormatDuration(elapsed))
}

// FormatStepRate formats a steps-per-second rate.
func FormatStepRate(rate float64) string {
	if rate >= 1000000 {
		return fmt.Sprintf("%.1fM/s", rate/1000000)
	}
	if rate >= 1000 {
		return fmt.Sprintf("%.1fK/s", rate/1000)
	}
	return fmt.Sprintf("%.0f/s", rate)
}

// FormatNumber adds commas to large numbers.
func FormatNumber(n uint64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	s := fmt.Sprintf("%d", n)
	result := make([]byte, 0, len(s)+(len(s)-1)/3)
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}
	return string(result)
}

// FormatDuration formats a duration in a human-readable way.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", h, m)
}
