package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mwhitlock-dev/credstore/pkg/config"
	"github.com/mwhitlock-dev/credstore/pkg/db"
	"github.com/mwhitlock-dev/credstore/pkg/hasher"
	"github.com/mwhitlock-dev/credstore/pkg/server"
	"github.com/mwhitlock-dev/credstore/pkg/server/endpoints"
	"github.com/mwhitlock-dev/credstore/pkg/session"
)

func defaultBindAddress() string {
	if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
		return addr
	}
	return "0.0.0.0"
}

func defaultPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8000"
}

func defaultPortInt() int {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			return p
		}
	}
	return 8000
}

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the credstore vault server",
	Long: `Run the credstore vault server

To run the server requires the environment variables CREDSTORE_SESSION_KEY and DATABASE_URL.

By default, database migrations are run on startup. Use --no-migrate to skip.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Validate required environment variables first (fail fast)
		sessionKey, err := config.SessionKeyFromEnv()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		if db.URL() == "" {
			fmt.Fprintln(os.Stderr, "DATABASE_URL environment variable is required")
			os.Exit(1)
		}

		// Run migrations unless --no-migrate is set
		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			log.Println("Running database migrations...")
			if err := runMigrations(); err != nil {
				fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
				os.Exit(1)
			}
		}

		cfg := config.Get()
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, "Invalid configuration:", err)
			os.Exit(1)
		}

		codec, err := session.NewCodec(sessionKey, cfg.CookieName, cfg.SessionTTL(), !cfg.IsDevelopment())
		if err != nil {
			fmt.Fprintln(os.Stderr, "Unable to initiate session codec:", err)
			os.Exit(1)
		}

		gormDB, err := db.Connect(db.Config{
			URL:             db.URL(),
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime(),
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "Unable to connect to DB:", err)
			os.Exit(1)
		}

		// Pick up config file edits without a restart. Watch blocks until
		// its context is cancelled, so it gets its own goroutine.
		go func() {
			if err := config.Watch(context.Background()); err != nil {
				log.Printf("Config watch disabled: %v", err)
			}
		}()

		// SIGHUP forces a reload, for `credstorectl configuration apply`.
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		go func() {
			for range hup {
				if err := config.Reload(); err != nil {
					log.Printf("Config reload failed: %v", err)
					continue
				}
				log.Println("Configuration reloaded")
			}
		}()

		host, _ := cmd.Flags().GetString("bind-address")
		port, _ := cmd.Flags().GetString("port")
		s := server.NewServer(gormDB, codec, hasher.NewWithCost(cfg.BcryptCost), cfg, host, port)

		endpoints.RegisterAll(s)

		log.Printf("Running server at http://%s:%s...\n", host, port)
		log.Fatal(s.Start())
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", defaultPort(), "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", defaultBindAddress(), "server bind address")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}
