// Package main is the entry point for the mediadeck terminal media playground.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gopxl/beep/v2"

	"mediadeck/config"
	"mediadeck/player"
	"mediadeck/playlist"
	"mediadeck/ui"
)

func run() error {
	cfg, err := config.Parse("mediadeck", os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if len(cfg.Files) == 0 {
		return errors.New("usage: mediadeck [flags] <audio-or-image> [more files...]")
	}

	log, closer, err := InitLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closer.Close()

	// Expand shell globs that may not have been expanded by the shell
	var files []string
	for _, arg := range cfg.Files {
		matches, err := filepath.Glob(arg)
		if err != nil || len(matches) == 0 {
			files = append(files, arg)
		} else {
			files = append(files, matches...)
		}
	}

	pl := playlist.New()
	for _, f := range files {
		pl.Add(playlist.TrackFromPath(f))
	}

	engine, err := player.New(player.Options{
		SampleRate: beep.SampleRate(cfg.SampleRate),
		FFTSize:    cfg.FFTSize,
		Log:        log.With("component", "player"),
	})
	if err != nil {
		return err
	}
	defer engine.Close()

	log.Info("starting", "files", len(files), "rate", cfg.SampleRate, "fft", cfg.FFTSize)
	m := ui.NewModel(cfg, engine, pl, log)
	prog := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
