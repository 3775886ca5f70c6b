package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/jole141/chainsim/app/services/simulator/console"
	"github.com/jole141/chainsim/app/services/simulator/handlers"
	"github.com/jole141/chainsim/foundation/blockchain/cluster"
	"github.com/jole141/chainsim/foundation/blockchain/genesis"
	"github.com/jole141/chainsim/foundation/events"
	"github.com/jole141/chainsim/foundation/logger"
	"github.com/jole141/chainsim/foundation/nameservice"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("SIMULATOR")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	// This is all the configuration for the application and the default values.
	// Zero values for the network settings keep the genesis values.
	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
		}
		Network struct {
			GenesisFile   string        `conf:"help:optional YAML file with the protocol parameters"`
			Nodes         int           `conf:"help:overrides the number of nodes"`
			BlockInterval time.Duration `conf:"help:overrides the time between mining signals"`
			AutoMine      bool          `conf:"default:true"`
			SkewNode      int           `conf:"default:-1"`
			SkewOffset    time.Duration `conf:"default:0s"`
		}
		NameService struct {
			Folder string `conf:"help:optional folder of .ecdsa key files used for the first nodes"`
		}
		Console struct {
			Enabled bool `conf:"default:true"`
			Color   bool `conf:"default:true"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "proof-of-work blockchain network simulator",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "SIM"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Genesis Support

	gen := genesis.Default()
	if cfg.Network.GenesisFile != "" {
		if gen, err = genesis.Load(cfg.Network.GenesisFile); err != nil {
			return fmt.Errorf("unable to load genesis file: %w", err)
		}
	}

	if cfg.Network.Nodes > 0 {
		gen.Nodes = cfg.Network.Nodes
	}
	if cfg.Network.BlockInterval > 0 {
		gen.BlockInterval = cfg.Network.BlockInterval
	}

	if err := gen.Validate(); err != nil {
		return err
	}

	log.Infow("startup", "status", "genesis", "nodes", gen.Nodes, "interval", gen.BlockInterval, "subsidy", gen.BlockSubsidy)

	// =========================================================================
	// Name Service Support

	var accounts []nameservice.Account
	if cfg.NameService.Folder != "" {
		if accounts, err = nameservice.LoadAccounts(cfg.NameService.Folder); err != nil {
			return fmt.Errorf("unable to load accounts: %w", err)
		}
	}

	// =========================================================================
	// Blockchain Support

	// The blockchain packages accept a function of this signature to allow the
	// application to log. Block events are sent to any websocket client that
	// is connected into the system through the events package and printed on
	// the console.
	evts := events.New()
	reporter := console.New(os.Stdout, cfg.Console.Color)

	ev := func(v string, args ...any) {
		const websocketPrefix = "viewer:"

		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")

		if strings.HasPrefix(s, websocketPrefix) {
			evts.Send(s)
			if cfg.Console.Enabled {
				reporter.Report(s)
			}
		}
	}

	c, err := cluster.New(cluster.Config{
		Genesis:    gen,
		Accounts:   accounts,
		SkewNode:   cfg.Network.SkewNode,
		SkewOffset: cfg.Network.SkewOffset,
		EvHandler:  ev,
	})
	if err != nil {
		return err
	}
	defer c.Shutdown()

	// Logging the identities for documentation in the logs.
	for identity, name := range c.Names().Copy() {
		log.Infow("startup", "status", "nameservice", "name", name, "identity", identity)
	}

	if cfg.Console.Enabled {
		reporter.Banner("simulating %d nodes, one block every %v", gen.Nodes, gen.BlockInterval)
	}

	// The driver signals a random node to mine on every interval.
	ctx, cancelDriver := context.WithCancel(context.Background())
	defer cancelDriver()

	if cfg.Network.AutoMine {
		go func() {
			if err := c.Run(ctx, gen.BlockInterval); err != nil && !errors.Is(err, context.Canceled) {
				log.Errorw("driver", "ERROR", err)
			}
		}()
	}

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	// Construct the mux for the debug calls.
	debugMux := handlers.DebugMux(build, log, c)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	// Construct the mux for the public API calls.
	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		Cluster:  c,
		Evts:     evts,
	})

	// Construct a server to service the requests against the mux.
	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Stop driving the network before the nodes are brought down.
		log.Infow("shutdown", "status", "stop mining driver")
		cancelDriver()

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancelPub := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancelPub()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}
