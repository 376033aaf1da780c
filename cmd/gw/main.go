package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/vanderheijden86/guidework/pkg/config"
	"github.com/vanderheijden86/guidework/pkg/debug"
	"github.com/vanderheijden86/guidework/pkg/store"
	"github.com/vanderheijden86/guidework/pkg/theme"
	"github.com/vanderheijden86/guidework/pkg/tour"
	"github.com/vanderheijden86/guidework/pkg/ui"
	"github.com/vanderheijden86/guidework/pkg/version"
	"github.com/vanderheijden86/guidework/pkg/watcher"
)

func main() {
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	themeFlag := flag.String("theme", "", "Theme preference: light, dark, or system")
	storeFlag := flag.String("store", "", "State backend: file or sqlite")
	resetTours := flag.Bool("reset-tours", false, "Clear all tour progress and exit")
	flag.Parse()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if *help {
		fmt.Println("Usage: gw [options]")
		fmt.Println("\nA guided-tour demo for the job board TUI.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("gw %s\n", version.Version)
		os.Exit(0)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "gw requires an interactive terminal")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		// Non-fatal: continue with defaults
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		cfg = config.DefaultConfig()
	}
	if *storeFlag != "" {
		if *storeFlag != config.StoreFile && *storeFlag != config.StoreSQLite {
			fmt.Fprintf(os.Stderr, "Error: unknown store backend %q\n", *storeFlag)
			os.Exit(2)
		}
		cfg.Store.Backend = *storeFlag
	}

	st, err := openStore(cfg)
	if err != nil {
		// Tours degrade to session-only state rather than blocking the app.
		fmt.Fprintf(os.Stderr, "Warning: state store unavailable: %v\n", err)
		st = nil
	}
	if st != nil {
		defer st.Close()
	}

	progress := tour.NewProgressStore(st)
	if *resetTours {
		progress.ResetAll()
		fmt.Println("Tour progress cleared.")
		os.Exit(0)
	}

	settings := loadSettings(st, cfg)

	renderer := lipgloss.NewRenderer(os.Stdout)
	resolver := theme.NewResolver(st, theme.TerminalProbe(renderer))
	switch *themeFlag {
	case "light":
		resolver.Set(theme.PreferenceLight)
	case "dark":
		resolver.Set(theme.PreferenceDark)
	case "system":
		resolver.Set(theme.PreferenceSystem)
	case "":
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown theme %q\n", *themeFlag)
		os.Exit(2)
	}
	theme.Apply(renderer, resolver.Resolved())

	registry := demoRegistry()
	targets := ui.NewTargetSet()

	var notify func()
	engine := tour.NewEngine(registry, progress,
		tour.WithResolver(targets),
		tour.WithOnChange(func() {
			if notify != nil {
				notify()
			}
		}),
	)
	trigger := tour.NewTrigger(engine, registry, progress, settings)

	// Watch the state file so theme and progress changes made by
	// another gw process show up here. sqlite handles its own
	// cross-process reads through the driver.
	if f, ok := st.(*store.File); ok {
		w, werr := watcher.New(f.Path(),
			watcher.WithOnChange(func() {
				if rerr := f.Reload(); rerr != nil {
					debug.Log("reloading state file: %v", rerr)
					return
				}
				resolver.Refresh()
				if notify != nil {
					notify()
				}
			}),
		)
		if werr == nil {
			if serr := w.Start(); serr == nil {
				defer w.Stop()
			} else {
				debug.Log("starting state watcher: %v", serr)
			}
		} else {
			debug.Log("creating state watcher: %v", werr)
		}
	}

	app, appNotify := ui.NewApp(ui.AppDeps{
		Theme:      resolver,
		Registry:   registry,
		Engine:     engine,
		Trigger:    trigger,
		Targets:    targets,
		Settings:   settings,
		Pages:      demoPages(),
		CardWidth:  cfg.UI.CardWidth,
		ShowFooter: cfg.UI.ShowFooter,
	})
	notify = appNotify

	if err := runTUIProgram(app); err != nil {
		fmt.Printf("Error running gw: %v\n", err)
		os.Exit(1)
	}
}

func openStore(cfg config.Config) (store.Store, error) {
	path := cfg.StatePath()
	if path == "" {
		return nil, fmt.Errorf("cannot determine state directory")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	if cfg.Store.Backend == config.StoreSQLite {
		return store.NewSQLite(path)
	}
	return store.NewFile(path)
}

// loadSettings returns a settings getter that reads the store on every
// call, so another process toggling auto-start takes effect here. A
// fresh install is seeded with the config file's tour defaults.
func loadSettings(st store.Store, cfg config.Config) func() tour.Settings {
	defaults := cfg.TourSettings()
	if st == nil {
		return func() tour.Settings { return defaults }
	}
	if _, ok, err := st.Get(store.SettingsKey); err == nil && !ok {
		tour.SaveSettings(st, defaults)
	}
	return func() tour.Settings { return tour.LoadSettings(st) }
}

func runTUIProgram(app tea.Model) error {
	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}
		p.Kill()
	}()

	_, err := p.Run()
	return err
}
