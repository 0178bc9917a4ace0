package main

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hpungsan/sift/internal/config"
	"github.com/hpungsan/sift/internal/db"
	"github.com/hpungsan/sift/internal/logger"
	"github.com/hpungsan/sift/internal/mcp"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// logFormatEnv selects JSON log output when set to "json".
const logFormatEnv = "SIFT_LOG_FORMAT"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"analyze": true, "fetch": true, "delete": true,
	"list": true, "query": true, "translate": true,
	"serve": true, "help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	return isHelpOrVersion()
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// needsStore reports whether the command touches the database.
func needsStore() bool {
	return len(os.Args) < 2 || os.Args[1] != "translate"
}

// isTerminal returns true if stdin is a terminal (not piped).
// An unreadable stdin counts as a terminal so the MCP server is not started.
func isTerminal() bool {
	return !stdinHasData()
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
       _  __ _
   ___(_)/ _| |_
  / __| | |_| __|
  \__ \ |  _| |_
  |___/_|_|  \__|

  String analyzer with natural-language filters

  Usage: sift <command> [options]
         sift --help

  MCP server mode requires piped input.`)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil, config.DefaultConfig(), zap.NewNop())
		if err := app.Run(os.Args); err != nil {
			fatal("%v", err)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && !isCLIMode() && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'sift --help' for usage.\n")
		os.Exit(1)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fatal("could not determine home directory: %v", err)
	}
	baseDir := filepath.Join(homeDir, ".sift")

	cwd, err := os.Getwd()
	if err != nil {
		fatal("could not determine working directory: %v", err)
	}

	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		fatal("failed to load config: %v", err)
	}
	if err := config.ApplyEnv(cfg); err != nil {
		fatal("%v", err)
	}

	log, err := logger.New(cfg.LogLevel, os.Getenv(logFormatEnv) == "json")
	if err != nil {
		fatal("%v", err)
	}
	defer func() { _ = log.Sync() }()

	warnUnknownDisabled(log, cfg)

	var store *db.Store
	if needsStore() {
		store, err = db.Open(baseDir, cfg)
		if err != nil {
			fatal("failed to initialize database: %v", err)
		}
		defer store.Close()
	}

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(store, cfg, log)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// MCP server mode (default)
	if err := mcp.Run(store, cfg, log, Version); err != nil {
		log.Error("mcp server stopped", zap.Error(err))
		os.Exit(1)
	}
}

// warnUnknownDisabled logs config entries that name no known tool or type.
func warnUnknownDisabled(log *zap.Logger, cfg *config.Config) {
	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		log.Warn("unknown tools in disabled_tools", zap.Strings("tools", unknown))
	}
	if unknown := mcp.ValidateDisabledTypes(cfg.DisabledTypes); len(unknown) > 0 {
		log.Warn("unknown types in disabled_types", zap.Strings("types", unknown))
	}
}
