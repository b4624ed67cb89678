package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dimitarvdimitrov/ws/internal/config"
	"github.com/dimitarvdimitrov/ws/internal/deps"
	"github.com/dimitarvdimitrov/ws/internal/git"
	"github.com/dimitarvdimitrov/ws/internal/launch"
	"github.com/dimitarvdimitrov/ws/internal/scanner"
	"github.com/dimitarvdimitrov/ws/internal/shell"
	"github.com/dimitarvdimitrov/ws/internal/store"
	"github.com/dimitarvdimitrov/ws/internal/tui"
	"github.com/dimitarvdimitrov/ws/pkg/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ws [filter words...]",
	Short: "Find and resume git worktrees and AI sessions",
	Long: `ws shows the repos, worktrees, and recorded AI sessions from the last
scan as a navigable tree. Select sessions, pick a worktree per branch, and
launch them all in one go. Trailing arguments seed the filter.`,
	Args: cobra.ArbitraryArgs,
	RunE: runTUI,
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Rescan repos and sessions into the snapshot cache",
	Args:  cobra.NoArgs,
	RunE:  runScan,
}

func init() {
	rootCmd.Version = version.Version
	rootCmd.AddCommand(scanCmd)
}

func ensureDeps() error {
	missing := deps.Check()
	if len(missing) == 0 {
		return nil
	}
	for _, dep := range missing {
		fmt.Fprintf(os.Stderr, "Missing dependency: %s (%s)\n", dep.Name, deps.InstallHint(dep))
	}
	return fmt.Errorf("missing required dependencies")
}

func runScan(cmd *cobra.Command, args []string) error {
	if err := ensureDeps(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	s := scanner.New(git.New(&shell.ExecCommander{}))
	snap, err := s.Scan(cfg.ExpandedScanDirs())
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	db, err := store.Open(store.DefaultPath())
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Save(snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	logrus.WithField("db", store.DefaultPath()).Info("snapshot saved")
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	if err := ensureDeps(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	commander := &shell.ExecCommander{}
	g := git.New(commander)

	launcher := launch.NewWarp(commander, cfg.Editor)
	if err := launcher.Cleanup(); err != nil {
		logrus.WithError(err).Warn("cleanup of old launch configs failed")
	}

	db, err := store.Open(store.DefaultPath())
	if err != nil {
		return err
	}
	defer db.Close()

	app := tui.New(tui.Deps{
		Store:         db,
		Scanner:       scanner.New(g),
		ScanDirs:      cfg.ExpandedScanDirs(),
		ScanOnOpen:    cfg.ScanOnOpen,
		Ops:           g,
		Launcher:      launcher,
		InitialFilter: strings.Join(args, " "),
	})
	return app.Run()
}
