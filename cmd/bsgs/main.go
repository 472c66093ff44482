package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/keyhunter/bsgs/internal/ui"
	"github.com/keyhunter/bsgs/pkg/bsgs"
)

const (
	version    = "1.0"
	updateRate = 100 * time.Millisecond
)

// Default target: puzzle 30 of the Bitcoin puzzle transaction series.
const defaultPubKey = "030d282cf2ff536d2c42f105d0b8588821a915dc3f9a05bd98bb23af67a2e92a5b"

var cfg bsgs.Config

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bsgs",
		Short: "Baby-Step Giant-Step search for secp256k1 puzzle keys",
		Long: `bsgs recovers a secp256k1 private key known to lie in the range
[2^(n-1), 2^n - 1] for puzzle number n, given the compressed public key.
It builds an on-disk baby table, then walks giant steps in parallel across
all CPU cores until the key is found or the range is exhausted.`,
		Example:       "  bsgs -p 30 -k " + defaultPubKey + " -t 8",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}

	cmd.Flags().IntVarP(&cfg.Puzzle, "puzzle", "p", 30, "puzzle number (1-256)")
	cmd.Flags().StringVarP(&cfg.PubKey, "pubkey", "k", defaultPubKey, "compressed public key, 66 hex chars")
	cmd.Flags().IntVarP(&cfg.Workers, "threads", "t", 0, "number of CPU cores to use (default all)")
	cmd.Flags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "verbose output")
	cmd.Flags().StringVar(&cfg.TableDir, "dir", ".", "directory for the baby table shards")
	cmd.Flags().BoolVar(&cfg.KeepTable, "keep-table", false, "do not delete the shard files after the run")

	return cmd
}

func run(ctx context.Context) error {
	// Normalize defaults (e.g. 0 workers means all cores) so the echoed
	// configuration shows what the solver actually uses.
	if err := cfg.Validate(); err != nil {
		return err
	}
	solver, err := bsgs.New(cfg)
	if err != nil {
		return err
	}

	ui.PrintBanner(version)
	ui.PrintConfig(cfg.Puzzle, cfg.PubKey, cfg.Workers, solver.StepCount())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	type outcome struct {
		res *bsgs.Result
		err error
	}
	events := make(chan string, 16)
	resultChan := make(chan outcome, 1)

	go func() {
		res, err := solver.Run(ctx, func(format string, args ...any) {
			events <- fmt.Sprintf(format, args...)
		})
		resultChan <- outcome{res, err}
	}()

	ticker := time.NewTicker(updateRate)
	defer ticker.Stop()
	frame := 0

	for {
		select {
		case out := <-resultChan:
			ui.ClearLine()
			return report(solver, out.res, out.err)

		case msg := <-events:
			ui.ClearLine()
			ui.Statusf("%s", msg)

		case <-ticker.C:
			phase, stats := solver.Progress()
			if phase != bsgs.PhaseIdle {
				ui.PrintProgress(phase, stats, frame)
				frame++
			}

		case <-sigChan:
			ui.ClearLine()
			ui.Statusf("interrupted, stopping workers")
			cancel()
		}
	}
}

// report prints the run outcome. A clean not-found exhausts the range
// without an error exit; everything else propagates to main.
func report(solver *bsgs.Solver, res *bsgs.Result, err error) error {
	switch {
	case err == nil:
		ui.PrintSuccess(res)
		return nil
	case errors.Is(err, bsgs.ErrNotFound):
		_, stats := solver.Progress()
		ui.PrintNotFound(time.Duration(stats.ElapsedSecs*float64(time.Second)), stats.Steps)
		return nil
	default:
		return err
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s[error]%s %v\n", ui.ColorRed+ui.ColorBold, ui.ColorReset, err)
		os.Exit(1)
	}
}
