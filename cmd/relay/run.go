package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/relaykit/relay"
	"github.com/relaykit/relay/internal/config"
	"github.com/relaykit/relay/internal/logging"
	"github.com/relaykit/relay/pkg/adapters/redis"
	"github.com/relaykit/relay/pkg/auth"
	"github.com/relaykit/relay/pkg/retry"
	"github.com/relaykit/relay/pkg/routing"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bot on a console transport",
	Long:  `Starts the relay runtime reading messages from stdin and printing replies to stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		logger := logging.New(logging.ParseLevel(cfg.LogLevel))
		transport := newConsoleTransport(os.Stdout)

		opts := []relay.Option{
			relay.WithLogger(logger),
			relay.WithPlugins(transport),
			relay.WithRetryPolicy(retry.Policy{
				MaxAttempts:  cfg.Retry.MaxAttempts,
				InitialDelay: cfg.Retry.InitialDelay,
				MaxDelay:     cfg.Retry.MaxDelay,
				Jitter:       retry.JitterMode(cfg.Retry.Jitter),
				Logger:       logger,
			}),
		}

		creds := auth.ClientCredentials{
			ClientID:     cfg.Auth.ClientID,
			ClientSecret: cfg.Auth.ClientSecret,
			TenantID:     cfg.Auth.TenantID,
		}
		if creds.Configured() {
			issuerOpts := []auth.IssuerOption{}
			if cfg.Auth.Authority != "" {
				issuerOpts = append(issuerOpts, auth.WithAuthority(cfg.Auth.Authority))
			}
			opts = append(opts,
				relay.WithCredentials(creds),
				relay.WithIssuer(auth.NewClientCredentialsIssuer(issuerOpts...)),
			)
		}
		if cfg.Auth.ConnectionName != "" {
			opts = append(opts, relay.WithConnectionName(cfg.Auth.ConnectionName))
		}

		if cfg.Cache.RedisAddr != "" {
			storeOpts := []redis.Option{}
			if cfg.Cache.RedisPrefix != "" {
				storeOpts = append(storeOpts, redis.WithPrefix(cfg.Cache.RedisPrefix))
			}
			opts = append(opts, relay.WithTokenStore(redis.New(cfg.Cache.RedisAddr, "", 0, storeOpts...)))
		} else {
			opts = append(opts, relay.WithTokenStore(auth.NewMemoryStore(cfg.Cache.GraphTokens)))
		}

		app, err := relay.New(opts...)
		if err != nil {
			return err
		}

		// Default echo route so a bare runtime is usable out of the box.
		app.OnMessage(func(ctx *routing.Context, next func() error) (any, error) {
			_, err := ctx.Reply("echo: " + ctx.Activity.Text)
			return nil, err
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := app.Start(ctx); err != nil {
			return err
		}
		defer app.Stop(ctx)

		fmt.Println("relay console: type a message, Ctrl-D to exit")
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if ctx.Err() != nil {
				break
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if _, err := transport.Deliver(ctx, line); err != nil {
				logger.Error("processing message", "err", err)
			}
		}
		return scanner.Err()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
