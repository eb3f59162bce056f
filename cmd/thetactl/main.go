package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/spf13/cobra"
	"github.com/thetactl/thetactl"
	"github.com/thetactl/thetactl/settings"
	"github.com/thetactl/thetactl/terminal"
)

type options struct {
	addr         string
	settingsPath string
	jarPath      string
	autoStart    bool
	debug        bool
	memoryVault  bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:          "thetactl",
		Short:        "Supervise the ThetaData Terminal and serve its console",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.addr, "addr", "127.0.0.1:25520", "listen address for the control API")
	flags.StringVar(&opts.settingsPath, "settings", "", "settings file (default: user config dir)")
	flags.StringVar(&opts.jarPath, "jar", "", "terminal jar, overriding the stored path")
	flags.BoolVar(&opts.autoStart, "auto-start", false, "start the terminal at boot")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flags.BoolVar(&opts.memoryVault, "memory-vault", false, "keep credentials in memory instead of the OS vault")

	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	level := log.InfoLevel
	if opts.debug {
		level = log.DebugLevel
	}
	configureLogging(level)

	settingsPath := opts.settingsPath
	if settingsPath == "" {
		path, err := settings.DefaultPath()
		if err != nil {
			return err
		}
		settingsPath = path
	}

	cfg, err := settings.Load(settingsPath)
	if err != nil {
		log.WithError(err).Warn("failed to load settings. using defaults.")
	}

	if opts.jarPath != "" {
		cfg.JarPath = opts.jarPath
	}
	if cmd.Flags().Changed("auto-start") {
		cfg.AutoStart = opts.autoStart
	}

	var vault thetactl.SecretStore = thetactl.KeyringStore{}
	if opts.memoryVault {
		vault = &thetactl.MemoryStore{}
	}

	manager := terminal.NewManager(vault)
	manager.JarPath = cfg.JarPath

	clients := &thetactl.ClientManager{}
	defer clients.Close()

	p := newPoller(manager, clients, &settings.Store{Path: settingsPath}, cfg)
	go p.run()

	e := newRouter(manager)

	// routes: process lifecycle
	{
		e.POST("/start", startHandler)
		e.POST("/stop", stopHandler)
		e.POST("/reset", resetHandler)
		e.GET("/status", statusHandler)
		e.GET("/log", logHandler)
	}

	// routes: clients, credentials, config file, settings
	h := &apiHandler{manager: manager, clients: clients, vault: vault, poller: p}
	{
		e.GET("/ws", h.webSocketHandler)
		e.GET("/credentials", h.showCredentialsHandler)
		e.PUT("/credentials", h.saveCredentialsHandler)
		e.DELETE("/credentials", h.removeCredentialsHandler)
		e.GET("/configfile", h.showConfigFileHandler)
		e.PUT("/configfile", h.saveConfigFileHandler)
		e.GET("/settings", h.showSettingsHandler)
		e.PUT("/settings", h.saveSettingsHandler)
	}

	srv := startWebServer(opts.addr, e)

	if cfg.AutoStart && cfg.JarPath != "" {
		if err := manager.Start(); err != nil {
			log.WithError(err).Warn("auto-start failed")
		}
	}

	// shutdown on interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Debug("shutdown initiated")
	{
		stopWebServer(srv)
		p.stop()
		manager.Shutdown()
	}
	log.Info("shutdown complete")
	return nil
}

func configureLogging(level log.Level) {
	log.SetLevel(level)
	log.SetHandler(cli.Default)
}
