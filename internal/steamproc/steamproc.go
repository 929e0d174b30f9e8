// Package steamproc restarts the Steam client so freshly installed unlock
// artifacts get picked up. The launcher is an interface so the pipeline can
// run without touching real processes.
package steamproc

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"
)

// Launcher stops and starts the Steam client.
type Launcher interface {
	Stop(ctx context.Context) error
	Start(ctx context.Context, steamRoot string) error
}

// Restart stops Steam, waits briefly for the process to exit, then starts
// it again from the given install root.
func Restart(ctx context.Context, l Launcher, steamRoot string, logger *slog.Logger) error {
	logger.Info("restarting steam", "root", steamRoot)
	if err := l.Stop(ctx); err != nil {
		return fmt.Errorf("stop steam: %w", err)
	}
	select {
	case <-time.After(2 * time.Second):
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := l.Start(ctx, steamRoot); err != nil {
		return fmt.Errorf("start steam: %w", err)
	}
	return nil
}

// ExecLauncher drives the real Steam client through OS commands.
type ExecLauncher struct{}

func (ExecLauncher) Stop(ctx context.Context) error {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "taskkill", "/F", "/IM", "steam.exe")
	} else {
		cmd = exec.CommandContext(ctx, "pkill", "-TERM", "steam")
	}
	// A non-zero exit usually means Steam was not running.
	_ = cmd.Run()
	return nil
}

func (ExecLauncher) Start(ctx context.Context, steamRoot string) error {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, filepath.Join(steamRoot, "steam.exe"))
	} else {
		cmd = exec.CommandContext(ctx, "steam")
	}
	return cmd.Start()
}

// NopLauncher does nothing; used when auto-restart is disabled.
type NopLauncher struct{}

func (NopLauncher) Stop(context.Context) error          { return nil }
func (NopLauncher) Start(context.Context, string) error { return nil }
