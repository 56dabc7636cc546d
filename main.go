// Kintree: a genealogy web server with an interactive family tree chart.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/vesaa/kintree/internal/config"
	"github.com/vesaa/kintree/internal/importer"
	"github.com/vesaa/kintree/internal/module"
	"github.com/vesaa/kintree/internal/server"
	"github.com/vesaa/kintree/internal/store"
	"github.com/vesaa/kintree/webui"
)

const asciiLogo = `
  _  __ _         _
 | |/ /(_) _ __  | |_  _ __  ___   ___
 | ' / | || '_ \ | __|| '__|/ _ \ / _ \
 | . \ | || | | || |_ | |  |  __/|  __/
 |_|\_\|_||_| |_| \__||_|   \___| \___|
`

const version = "v0.1.0"

func printBanner(mode string) {
	fmt.Print(asciiLogo + "\n")
	fmt.Printf("  ► Kintree %s  |  Mode: %s\n\n", version, mode)
}

func main() {
	root := &cobra.Command{
		Use:   "kintree",
		Short: "Kintree, a genealogy server with an interactive tree chart",
		Long: `Kintree serves family trees over HTTP: individual pages, chart menus
and an interactive, expandable ancestor/descendant tree.`,
		SilenceUsage: true,
	}

	// ── server subcommand ─────────────────────────────────────────────────────
	serverCmd := &cobra.Command{
		Use:   "server",
		Short: "Start the Kintree web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			printBanner("SERVER")

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			st, err := store.Open(cfg)
			if err != nil {
				return fmt.Errorf("initializing database: %w", err)
			}
			defer st.Close()

			if err := st.EnsureAdmin(cmd.Context(), cfg.AdminUser, cfg.AdminPass); err != nil {
				return fmt.Errorf("creating admin account: %w", err)
			}

			pages, err := webui.Templates()
			if err != nil {
				return fmt.Errorf("parsing templates: %w", err)
			}
			registry := module.NewRegistry(
				module.NewInteractiveTree(st, pages, cfg.ModulesDir),
			)

			gin.SetMode(gin.ReleaseMode)
			engine, err := server.New(cfg, st, registry).Handler()
			if err != nil {
				return err
			}

			addr := cfg.Addr()
			fmt.Printf("  ✓ Web UI + API → http://%s\n", addr)
			fmt.Printf("  ✓ Database     → %s\n", cfg.DBPath)
			fmt.Printf("  ✓ Admin login  → %s\n\n", cfg.AdminUser)

			srv := &http.Server{Addr: addr, Handler: engine}
			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt)

			select {
			case err := <-errCh:
				return err
			case <-quit:
				fmt.Println("\n  → Shutting down gracefully…")
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(ctx)
			}
		},
	}

	// ── import subcommand ─────────────────────────────────────────────────────
	importCmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Load a family tree from a YAML document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			st, err := store.Open(cfg)
			if err != nil {
				return fmt.Errorf("initializing database: %w", err)
			}
			defer st.Close()

			name, _ := cmd.Flags().GetString("tree")
			res, err := importer.ImportFile(cmd.Context(), st, args[0], name)
			if err != nil {
				return err
			}
			fmt.Printf("  ✓ Imported tree %q: %d individuals, %d families\n",
				res.Tree.Name, res.Individuals, res.Families)
			return nil
		},
	}
	importCmd.Flags().String("tree", "", "Tree name (overrides the name in the file)")

	// ── version subcommand ────────────────────────────────────────────────────
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print Kintree version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Kintree %s\n", version)
		},
	}

	root.AddCommand(serverCmd, importCmd, versionCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
