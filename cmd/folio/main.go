package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"

	"github.com/foliogen/folio/builder/config"
	"github.com/foliogen/folio/builder/run"
	"github.com/foliogen/folio/internal/build"
	"github.com/foliogen/folio/internal/clean"
	"github.com/foliogen/folio/internal/scaffold"
	"github.com/foliogen/folio/internal/server"
)

// version is stamped by release builds via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]
	logger := newLogger()

	switch command {
	case "init":
		scaffold.Run(args)
	case "new":
		scaffold.NewPost(config.Load(nil), args)
	case "build":
		runBuild(args, logger)
	case "serve":
		runServe(args, logger)
	case "clean":
		cleanCache := false
		for _, arg := range args {
			if arg == "--cache" || arg == "-c" {
				cleanCache = true
			}
		}
		clean.Run(config.Load(nil), cleanCache)
	case "search":
		runSearch(args, logger)
	case "cache":
		handleCacheCommand(args)
	case "version":
		fmt.Println("folio", version)
	case "help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// newLogger uses colorized output on a terminal and plain text otherwise.
func newLogger() *slog.Logger {
	w := os.Stderr
	if isatty.IsTerminal(w.Fd()) {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      slog.LevelInfo,
			TimeFormat: time.Kitchen,
		}))
	}
	return slog.New(slog.NewTextHandler(w, nil))
}

func runBuild(args []string, logger *slog.Logger) {
	cfg := config.Load(args)

	b, err := run.NewBuilder(cfg, logger)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = b.Close() }()

	if err := build.EnsureScrollspy(b.Cache(), cfg.StaticDir, logger); err != nil {
		logger.Warn("scrollspy wasm unavailable, pages fall back to static TOC", "error", err)
	}

	if err := b.Build(context.Background()); err != nil {
		fmt.Printf("❌ Build failed: %v\n", err)
		os.Exit(1)
	}
}

func runServe(args []string, logger *slog.Logger) {
	cfg := config.Load(args)
	config.SetDevMode(cfg, true)

	b, err := run.NewBuilder(cfg, logger)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = b.Close() }()

	if err := build.EnsureScrollspy(b.Cache(), cfg.StaticDir, logger); err != nil {
		logger.Warn("scrollspy wasm unavailable, pages fall back to static TOC", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := b.Build(ctx); err != nil {
		fmt.Printf("❌ Initial build failed: %v\n", err)
		os.Exit(1)
	}

	if err := server.Run(ctx, cfg, b, logger); err != nil {
		fmt.Printf("❌ Server error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: folio <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  init [dir]            Scaffold a new site")
	fmt.Println("  new <title> [parent]  Create a post, or a subpost of <parent>")
	fmt.Println("  build                 Build the site into the output directory")
	fmt.Println("  serve                 Dev server with live reload")
	fmt.Println("  clean [--cache]       Remove the output directory (and cache)")
	fmt.Println("  search <query>        Full-text search across posts")
	fmt.Println("  cache <subcommand>    Inspect or maintain the build cache")
	fmt.Println("  version               Print the folio version")
	fmt.Println("  help                  Show this help message")
	fmt.Println("\nFlags for build and serve:")
	fmt.Println("  -baseurl <url>        Override the site base URL")
	fmt.Println("  -drafts               Include draft posts")
	fmt.Println("  -minify               Minify HTML/CSS/JS output")
	fmt.Println("  -workers <n>          Worker count, 0 for auto")
	fmt.Println("  -force                Ignore the build cache")
	fmt.Println("  -port <n>             Dev server port")
}
