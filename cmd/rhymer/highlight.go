package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fractal-lba/rhymer/internal/api"
	"github.com/fractal-lba/rhymer/internal/engine"
	"github.com/fractal-lba/rhymer/internal/render"
)

// Output formats.
const (
	formatANSI   = "ansi"
	formatJSON   = "json"
	formatGroups = "groups"
)

func highlightCmd(g *globalFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "highlight [file|-]",
		Short: "Run one highlighting pass over a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			a, err := g.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			res, err := a.Engine.Run(cmd.Context(), text)
			if err != nil {
				return fmt.Errorf("highlight: %w", err)
			}

			theme, err := render.ThemeByName(a.Config.Render.Theme)
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), format, text, res, theme)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatANSI, "Output format: ansi, json or groups")

	return cmd
}

func checkFormat(format string) error {
	switch format {
	case formatANSI, formatJSON, formatGroups:
		return nil
	}
	return fmt.Errorf("unknown format %q (want ansi, json or groups)", format)
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), nil
}

func writeResult(w io.Writer, format, text string, res *engine.Result, theme render.Theme) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(api.FromResult(res))
	case formatGroups:
		_, err := io.WriteString(w, render.Plain(res.Groups, res.Colors))
		return err
	default:
		out := render.ANSI(text, res.Spans, theme)
		if len(out) > 0 && out[len(out)-1] != '\n' {
			out += "\n"
		}
		if len(res.Groups) > 0 {
			out += "\n" + render.Legend(res.Groups, res.Colors)
		}
		_, err := io.WriteString(w, out)
		return err
	}
}
