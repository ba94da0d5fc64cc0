// Package main is the entry point for the lavue frontend.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lemonberrylabs/lavue/pkg/api"
	"github.com/lemonberrylabs/lavue/pkg/backend"
	"github.com/lemonberrylabs/lavue/pkg/config"
	"github.com/lemonberrylabs/lavue/pkg/driver"
	"github.com/lemonberrylabs/lavue/pkg/lexer"
	"github.com/lemonberrylabs/lavue/web"
	"github.com/spf13/cobra"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:          "lavue",
	Short:        "Parse lavue source from stdin into an AST",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runREPL,
}

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Print the tokens of stdin, one per line",
	Args:  cobra.NoArgs,
	RunE:  runTokens,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the parser over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.Version = version + " (commit=" + commit + ", built=" + date + ")"
	rootCmd.SetVersionTemplate("lavue version {{.Version}}\n")

	rootCmd.PersistentFlags().String("config", "", "YAML config file (env LAVUE_CONFIG)")
	rootCmd.PersistentFlags().Int("max-depth", 0, "Maximum expression nesting depth (default 256, env LAVUE_MAX_DEPTH)")

	rootCmd.Flags().String("emit", "", "Print accepted units to stdout: none, sexpr, yaml or json (env LAVUE_EMIT)")
	rootCmd.Flags().Bool("resolve", false, "Check names and call arity of each unit (env LAVUE_RESOLVE)")

	serveCmd.Flags().Int("port", 0, "HTTP server port (default 8790, env PORT)")
	serveCmd.Flags().String("host", "", "Bind address (default 0.0.0.0, env HOST)")

	rootCmd.AddCommand(tokensCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig layers defaults, the config file, the environment and flags,
// in increasing priority.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := os.Getenv(config.EnvConfig)
	if v, _ := cmd.Flags().GetString("config"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.FromEnv(os.Getenv); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("max-depth") {
		cfg.MaxDepth, _ = flags.GetInt("max-depth")
	}
	if flags.Changed("emit") {
		cfg.Emit, _ = flags.GetString("emit")
	}
	if flags.Changed("resolve") {
		cfg.Resolve, _ = flags.GetBool("resolve")
	}
	if flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("host") {
		cfg.Server.Host, _ = flags.GetString("host")
	}
	return cfg, cfg.Validate()
}

func runREPL(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return repl(cmd.Context(), cfg, os.Stdin, os.Stdout, os.Stderr)
}

// repl runs the driver loop over in. Accepted units are printed to out in
// the configured format; prompts, status and error lines go to status.
func repl(ctx context.Context, cfg *config.Config, in io.Reader, out, status io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	opts, err := cfg.ParserOptions()
	if err != nil {
		return err
	}
	format, err := backend.ParseFormat(cfg.Emit)
	if err != nil {
		return err
	}

	var chain backend.Chain
	if cfg.Resolve {
		chain = append(chain, backend.NewRegistry())
	}
	chain = append(chain, backend.NewPrinter(out, format))

	d := driver.New(in, driver.Config{
		Backend: chain,
		Out:     status,
		Prompt:  cfg.Prompt,
		Parser:  opts,
	})
	_, err = d.Run(ctx)
	return err
}

func runTokens(cmd *cobra.Command, args []string) error {
	return printTokens(os.Stdin, os.Stdout)
}

func printTokens(in io.Reader, out io.Writer) error {
	lex := lexer.New(in)
	for {
		tok := lex.Next()
		if _, err := fmt.Fprintf(out, "%s\t%s\n", tok.Pos, tok); err != nil {
			return err
		}
		if tok.Kind == lexer.KindEOF {
			return lex.Err()
		}
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := cfg.ParserOptions()
	if err != nil {
		return err
	}

	server := api.New(opts)

	// Register the playground UI (non-fatal if template parsing fails)
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Warning: playground UI disabled due to template error: %v", r)
			}
		}()
		web.New(opts).Register(server.App())
	}()

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down lavue server...")
		if err := server.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	addr := cfg.Addr()
	log.Printf("lavue parse service listening on %s (max depth %d)", addr, opts.Depth())
	return server.Listen(addr)
}
