package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/wordchain/internal/cli"
	"github.com/bastiangx/wordchain/internal/logger"
	"github.com/bastiangx/wordchain/internal/utils"
	"github.com/bastiangx/wordchain/pkg/config"
	"github.com/bastiangx/wordchain/pkg/httpapi"
	"github.com/bastiangx/wordchain/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	flagConfig  string
	flagSources string
	flagDebug   bool

	flagAddr    string
	flagLimit   int
	flagRebuild bool

	flagDefaultSuggestions int
	flagMaxSuggestions     int
	flagWatch              bool
)

var rootCmd = &cobra.Command{
	Use:   AppName,
	Short: "Next-word prediction from toggleable text corpora",
	Long: `WordChain predicts the next word of a text from word-transition counts
learned over a directory of plain-text sources.

Commands:
  serve    JSON API over HTTP
  ipc      msgpack over stdin/stdout
  cli      interactive prompt
  config   show or rebuild the config file
  version  print version info`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagDebug {
			log.SetLevel(log.DebugLevel)
			log.SetReportTimestamp(true)
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve predictions over HTTP",
	Long: `Load the sources directory, train the model and serve the JSON API.

Examples:
  wordchain serve
  wordchain serve --addr :8080 --sources ./corpora -d`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var ipcCmd = &cobra.Command{
	Use:   "ipc",
	Short: "Serve predictions as msgpack over stdin/stdout",
	Args:  cobra.NoArgs,
	RunE:  runIPC,
}

var cliCmd = &cobra.Command{
	Use:   "cli",
	Short: "Interactive prompt for predictions and source toggling",
	Args:  cobra.NoArgs,
	RunE:  runCLI,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version info",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		showVersion()
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show, update or rebuild the active config",
	Long: `Print the active config file. With -d the runtime paths are printed too.

Examples:
  wordchain config
  wordchain config --max-suggestions 10 --watch=false
  wordchain config --rebuild`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config.toml")
	rootCmd.PersistentFlags().StringVar(&flagSources, "sources", "", "corpus directory (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "d", false, "debug logging")

	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (overrides config)")
	cliCmd.Flags().IntVarP(&flagLimit, "limit", "n", 0, "number of suggestions (default from config)")
	configCmd.Flags().BoolVar(&flagRebuild, "rebuild", false, "overwrite the config file with defaults")
	configCmd.Flags().IntVar(&flagDefaultSuggestions, "default-suggestions", 0, "set server.default_suggestions")
	configCmd.Flags().IntVar(&flagMaxSuggestions, "max-suggestions", 0, "set server.max_suggestions")
	configCmd.Flags().BoolVar(&flagWatch, "watch", true, "set sources.watch")

	rootCmd.AddCommand(serveCmd, ipcCmd, cliCmd, versionCmd, configCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !flagDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	addr := a.cfg.Server.Addr
	if flagAddr != "" {
		addr = flagAddr
	}

	httpLogger := componentLogger(a.cfg, "http")
	h := httpapi.NewHandlers(a.engine, httpapi.Limits{
		DefaultSuggestions: a.cfg.Server.DefaultSuggestions,
		MaxSuggestions:     a.cfg.Server.MaxSuggestions,
		MaxTextLength:      a.cfg.Server.MaxTextLength,
	}, httpLogger)
	router := httpapi.SetupRouter(h, httpLogger)

	showStartupInfo(a, "http://"+addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.watchOrWarn(gctx)
		return nil
	})
	g.Go(func() error {
		return httpapi.Serve(gctx, addr, router, httpLogger)
	})
	return g.Wait()
}

func runIPC(cmd *cobra.Command, args []string) error {
	// stdout carries protocol frames
	logger.SetOutput(os.Stderr)
	if !flagDebug {
		log.SetLevel(log.WarnLevel)
	}
	sigHandler()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	srv := server.NewServer(a.engine, server.Limits{
		DefaultSuggestions: a.cfg.Server.DefaultSuggestions,
		MaxSuggestions:     a.cfg.Server.MaxSuggestions,
		MaxTextLength:      a.cfg.Server.MaxTextLength,
	})
	srv.SetLogger(componentLogger(a.cfg, "ipc"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.watchOrWarn(gctx)
		return nil
	})
	g.Go(func() error {
		defer cancel()
		return srv.Start(gctx)
	})
	return g.Wait()
}

func runCLI(cmd *cobra.Command, args []string) error {
	sigHandler()
	log.SetReportTimestamp(false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	limit := a.cfg.CLI.DefaultSuggestions
	if flagLimit > 0 {
		limit = flagLimit
	}
	log.Debug("Input info:", "limit", limit, "sources", a.sourcesDir)

	go a.watchOrWarn(ctx)

	return cli.NewInputHandler(a.engine, limit).Start()
}

func runConfig(cmd *cobra.Command, args []string) error {
	if flagRebuild {
		path, err := config.RebuildConfigFile(flagConfig)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote defaults to %s\n", path)
		return nil
	}

	cfg, path, err := config.LoadConfigWithPriority(flagConfig)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("default-suggestions") || flags.Changed("max-suggestions") || flags.Changed("watch") {
		if path == "" {
			return fmt.Errorf("no config file to update, run with --rebuild first")
		}
		var defaultSuggestions, maxSuggestions *int
		var watch *bool
		if flags.Changed("default-suggestions") {
			defaultSuggestions = &flagDefaultSuggestions
		}
		if flags.Changed("max-suggestions") {
			maxSuggestions = &flagMaxSuggestions
		}
		if flags.Changed("watch") {
			watch = &flagWatch
		}
		if err := cfg.Update(path, defaultSuggestions, maxSuggestions, watch); err != nil {
			return fmt.Errorf("failed to update config: %w", err)
		}
		log.Infof("Updated %s", path)
	}

	out := cmd.OutOrStdout()
	if flagDebug {
		if pr, err := utils.NewPathResolver(); err == nil {
			writeRuntimeInfo(out, pr.GetRuntimeInfo())
		} else {
			log.Warnf("Failed to initialize path resolver: %v", err)
		}
	}
	fmt.Fprintf(out, "# %s\n", config.GetActiveConfigPath(path))
	return writeTOML(out, cfg)
}

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

func showVersion() {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	l.SetStyles(styles)

	l.Print("")
	l.Print("[ WordChain ] Predicts your next word from the texts you feed it")
	l.Print("", "version", Version)
	l.Print("")
	l.Print("use -h or --help to see available options")
	l.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(a *app, listen string) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)
	defer log.SetLevel(currentLevel)

	banner := lipgloss.NewStyle().Bold(true).Padding(0, 1).
		Border(lipgloss.NormalBorder(), true, false).
		Render("WordChain")
	fmt.Fprintln(os.Stderr, banner)

	s := a.engine.Stats()
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("config: ( %s )", config.GetActiveConfigPath(a.cfgPath))
	log.Infof("sources dir: ( %s )", a.sourcesDir)
	log.Infof("sources: %d loaded, %d active", s.Sources, s.ActiveSources)
	log.Infof("listening: %s", listen)
	log.Info("status: ready")
	fmt.Fprintln(os.Stderr, "Press Ctrl+C to exit")
}
