package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/fractal-lba/rhymer/internal/debounce"
	"github.com/fractal-lba/rhymer/internal/render"
)

const clearScreen = "\x1b[H\x1b[2J"

func watchCmd(g *globalFlags) *cobra.Command {
	var (
		poll    time.Duration
		delay   time.Duration
		noClear bool
	)

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-highlight a file each time it changes",
		Long: `Polls a file for changes. Edits are debounced: a pass runs once the file
has been quiet for the debounce delay, and its output replaces the previous one.
If a pass fails the previous highlighting stays on screen.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			ctx := cmd.Context()
			if poll <= 0 {
				return fmt.Errorf("--poll must be positive")
			}

			a, err := g.openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			theme, err := render.ThemeByName(a.Config.Render.Theme)
			if err != nil {
				return err
			}
			if delay <= 0 {
				delay = a.Config.Engine.Debounce
			}

			out := cmd.OutOrStdout()
			var outMu sync.Mutex

			pass := func() {
				data, err := os.ReadFile(path)
				if err != nil {
					a.Logger.Error("read watched file", "path", path, "error", err)
					return
				}
				text := string(data)

				// A failed pass is logged by the engine; the screen keeps the last output.
				res, err := a.Engine.Run(ctx, text)
				if err != nil {
					return
				}

				outMu.Lock()
				defer outMu.Unlock()
				if !noClear {
					_, _ = io.WriteString(out, clearScreen)
				}
				_ = writeResult(out, formatANSI, text, res, theme)
			}

			d := debounce.New(delay, pass)
			defer d.Stop()

			last, err := stat(path)
			if err != nil {
				return err
			}
			d.Trigger()
			d.Flush()

			ticker := time.NewTicker(poll)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					cur, err := stat(path)
					if err != nil {
						a.Logger.Warn("stat watched file", "path", path, "error", err)
						continue
					}
					if cur.changed(last) {
						last = cur
						d.Trigger()
					}
				}
			}
		},
	}

	cmd.Flags().DurationVar(&poll, "poll", 200*time.Millisecond, "File polling interval")
	cmd.Flags().DurationVar(&delay, "debounce", 0, "Quiet period before a pass (default from config, 500ms)")
	cmd.Flags().BoolVar(&noClear, "no-clear", false, "Append output instead of clearing the screen")

	return cmd
}

type fileState struct {
	size    int64
	modTime time.Time
}

func stat(path string) (fileState, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return fileState{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return fileState{size: fi.Size(), modTime: fi.ModTime()}, nil
}

func (s fileState) changed(prev fileState) bool {
	return s.size != prev.size || !s.modTime.Equal(prev.modTime)
}
