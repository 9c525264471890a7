package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starfrom/agentos-gateway/internal/api"
	"github.com/starfrom/agentos-gateway/internal/audit"
	"github.com/starfrom/agentos-gateway/internal/auth"
	"github.com/starfrom/agentos-gateway/internal/config"
	"github.com/starfrom/agentos-gateway/internal/core"
	"github.com/starfrom/agentos-gateway/internal/db"
	"github.com/starfrom/agentos-gateway/internal/llm"
	"github.com/starfrom/agentos-gateway/internal/logging"
	"github.com/starfrom/agentos-gateway/internal/mcpserver"
	"github.com/starfrom/agentos-gateway/internal/metrics"
	"github.com/starfrom/agentos-gateway/internal/model"
	"github.com/starfrom/agentos-gateway/internal/ratelimit"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "create-api-key", "create-mcp-token":
			kind := model.CredentialKindAPIKey
			if os.Args[1] == "create-mcp-token" {
				kind = model.CredentialKindMCPToken
			}
			if err := createCredential(kind, os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "gateway-api: %v\n", err)
		os.Exit(1)
	}
}

// run starts the gateway and blocks until it shuts down. Deferred cleanup
// runs before the error reaches main.
func run() error {
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	migrateDirFlag := flag.String("migrate-dir", "migrations", "Migration files directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate("gateway-api"); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.NewLogger(cfg)

	if *migrateFlag {
		logger.Info().Str("dir", *migrateDirFlag).Msg("running database migrations")
		if err := db.RunMigrations(cfg.DatabaseURL, *migrateDirFlag); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()
	metrics.RegisterPgxPoolMetrics(pool)

	redisTLS, err := cfg.RedisTLS()
	if err != nil {
		return fmt.Errorf("configure redis TLS: %w", err)
	}
	rdb, err := db.NewRedis(ctx, cfg.RedisURL, redisTLS)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rdb.Close()
	metrics.RegisterRedisPoolMetrics(rdb)

	mcpCfg, err := mcpserver.LoadConfig(cfg.MCPConfigPath)
	if err != nil {
		return fmt.Errorf("load MCP config %q: %w", cfg.MCPConfigPath, err)
	}

	backend := llm.NewBackend(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMEmbeddingModel)
	services := core.NewServices(pool, backend)
	callLog := audit.NewLogger(services.CallLog, logger.With().Str("component", "audit").Logger())

	toolset := &mcpserver.Toolset{
		Agents:    services.Agent,
		Workflows: services.Workflow,
		Sessions:  services.Session,
		Knowledge: services.Knowledge,
		Backend:   backend,
		Logger:    logger.With().Str("component", "mcp").Logger(),
	}
	mcpSrv, err := mcpserver.New(mcpCfg, toolset.Tools(), logger)
	if err != nil {
		return fmt.Errorf("create MCP server: %w", err)
	}

	limiter := ratelimit.NewLimiter(rdb, ratelimit.Options{
		Window: cfg.RateLimitWindow,
		Limit:  cfg.RateLimitRPM,
		Policy: ratelimit.Policy(cfg.RateLimitFailureMode),
	}, logger.With().Str("component", "ratelimit").Logger())

	srv := api.NewServer(api.Options{
		Logger:        logger,
		AdminToken:    cfg.AdminToken,
		TrustProxy:    cfg.TrustProxyHeaders,
		PerKeyLimits:  cfg.RateLimitPerKey,
		Authenticator: auth.NewAuthenticator(services.Credential, callLog, logger),
		Limiter:       limiter,
		Audit:         callLog,
		Credentials:   services.Credential,
		Agents:        services.Agent,
		Sessions:      services.Session,
		Workflows:     services.Workflow,
		CallLogs:      services.CallLog,
		Knowledge:     services.Knowledge,
		Webhooks:      services.Webhook,
		Backend:       backend,
		MCP:           mcpSrv,
		Readiness: map[string]api.CheckFunc{
			"postgres": pool.Ping,
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
	})

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	metricsServer := metrics.NewServer(cfg.MetricsListenAddr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", cfg.HTTPListenAddr).Msg("starting gateway API server")
		return serve(httpServer)
	})
	g.Go(func() error {
		logger.Info().Str("addr", cfg.MetricsListenAddr).Msg("starting metrics server")
		return serve(metricsServer)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		httpServer.Shutdown(shutdownCtx)
		metricsServer.Shutdown(shutdownCtx)
		if err := callLog.Close(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("call log not fully flushed")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server failed")
		return err
	}
	return nil
}

func serve(s *http.Server) error {
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func createCredential(kind model.CredentialKind, args []string) error {
	cmd := "create-api-key"
	if kind == model.CredentialKindMCPToken {
		cmd = "create-mcp-token"
	}

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	workspace := fs.String("workspace", "", "Workspace ID (required)")
	name := fs.String("name", "", "Name for the credential (required)")
	readOnly := fs.Bool("read-only", false, "Grant only the read scope")
	expiresIn := fs.Duration("expires-in", 0, "Lifetime, e.g. 720h (default: never expires)")
	rpm := fs.Int("rpm", 0, "Per-credential rate limit in requests per minute")
	fs.Parse(args)

	if *workspace == "" || *name == "" {
		return fmt.Errorf("--workspace and --name are required\nusage: gateway-api %s --workspace <id> --name <name>", cmd)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate("admin-cli"); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	params := core.CreateCredentialParams{
		WorkspaceID:  *workspace,
		Kind:         kind,
		Name:         *name,
		RateLimitRPM: *rpm,
	}
	if *readOnly {
		params.Scopes = []string{model.ScopeRead}
	}
	if *expiresIn > 0 {
		at := time.Now().Add(*expiresIn).UTC()
		params.ExpiresAt = &at
	}

	svc := core.NewCredentialService(pool)
	cred, plaintext, err := svc.Create(ctx, params)
	if err != nil {
		return fmt.Errorf("create credential: %w", err)
	}

	fmt.Printf("Credential created successfully.\n\n")
	fmt.Printf("  Workspace: %s\n", cred.WorkspaceID)
	fmt.Printf("  Name:      %s\n", cred.Name)
	fmt.Printf("  ID:        %s\n", cred.ID)
	fmt.Printf("  Scopes:    %v\n", cred.Scopes)
	fmt.Printf("  Secret:    %s\n\n", plaintext)
	fmt.Printf("Save this secret. It will not be shown again.\n")
	return nil
}
