package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nand2tetris-go/jackc/api"
	"github.com/nand2tetris-go/jackc/browser"
	"github.com/nand2tetris-go/jackc/compiler"
	"github.com/nand2tetris-go/jackc/config"
	"github.com/nand2tetris-go/jackc/loader"
	"github.com/nand2tetris-go/jackc/service"
)

const (
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		configPath  = flag.String("config", "", "Path to a TOML config file (default: built-in defaults)")
		tuiMode     = flag.Bool("tui", false, "Browse compiled classes in a terminal tree view")
		guiMode     = flag.Bool("gui", false, "Browse compiled classes in a desktop window")
		apiServer   = flag.Bool("api-server", false, "Start HTTP API server mode (no source path required)")
		apiPort     = flag.Int("port", 8080, "API server port (used with -api-server)")
		jobs        = flag.Int("jobs", runtime.NumCPU(), "Maximum number of .jack files compiled concurrently")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("jackc %s (%s)\n", Version, Commit)
		os.Exit(0)
	}
	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jackc: %v\n", err)
		os.Exit(1)
	}

	if *apiServer {
		runAPIServer(*apiPort, cfg)
		return
	}

	if flag.NArg() == 0 {
		printHelp()
		os.Exit(0)
	}

	results, ok := compileAll(flag.Arg(0), cfg, *jobs)

	if *tuiMode {
		if err := browser.RunTUI(results); err != nil {
			fmt.Fprintf(os.Stderr, "jackc: tui error: %v\n", err)
			os.Exit(1)
		}
		if !ok {
			os.Exit(1)
		}
		return
	}
	if *guiMode {
		if err := browser.RunGUI(results); err != nil {
			fmt.Fprintf(os.Stderr, "jackc: gui error: %v\n", err)
			os.Exit(1)
		}
		if !ok {
			os.Exit(1)
		}
		return
	}

	if !ok {
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.LoadFrom(path)
}

// compileAll discovers every source file under path and compiles them
// concurrently, bounded by jobs. It reports every failure to stderr in
// discovery order and returns ok=false if any file failed.
func compileAll(path string, cfg *config.Config, jobs int) ([]*service.Result, bool) {
	files, err := loader.Discover(path, loader.SourceExt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jackc: %v\n", err)
		return nil, false
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "jackc: no %s files found under %s\n", loader.SourceExt, path)
		return nil, false
	}

	if jobs < 1 {
		jobs = 1
	}

	results := make([]*service.Result, len(files))
	errs := make([]error, len(files))

	eg := new(errgroup.Group)
	eg.SetLimit(jobs)

	for i, file := range files {
		i, file := i, file
		eg.Go(func() error {
			result, err := service.CompileFile(file, cfg)
			results[i] = result
			errs[i] = err
			return nil
		})
	}
	_ = eg.Wait()

	ok := true
	var compiled []*service.Result
	for i, e := range errs {
		if e != nil {
			ok = false
			fmt.Fprintln(os.Stderr, formatError(e, cfg))
			continue
		}
		compiled = append(compiled, results[i])
	}

	return compiled, ok
}

// formatError renders a compile failure for stderr. Diagnostics.Verbose
// expands one or more *compiler.CompileError values (FailFast=false
// collects several into a single errors.Join'd error) into their
// kind/file/token fields instead of the terse one-line form;
// Diagnostics.Color wraps the result in ANSI red.
func formatError(err error, cfg *config.Config) string {
	msg := err.Error()
	if cfg.Diagnostics.Verbose {
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			lines := make([]string, 0, len(joined.Unwrap()))
			for _, sub := range joined.Unwrap() {
				lines = append(lines, verboseCompileError(sub))
			}
			msg = strings.Join(lines, "\n")
		} else {
			msg = verboseCompileError(err)
		}
	}
	if cfg.Diagnostics.Color {
		return ansiRed + msg + ansiReset
	}
	return msg
}

func verboseCompileError(err error) string {
	var ce *compiler.CompileError
	if errors.As(err, &ce) {
		return fmt.Sprintf("jackc: %s error in %s: %s (offending token: %q)", ce.Kind, ce.Filename, ce.Message, ce.Token)
	}
	return err.Error()
}

func runAPIServer(port int, cfg *config.Config) {
	srv := api.NewServer(port, cfg)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var shutdownOnce sync.Once
	shutdown := func() {
		shutdownOnce.Do(func() {
			fmt.Println("\nshutting down jackc API server...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "error during shutdown: %v\n", err)
				os.Exit(1)
			}
			os.Exit(0)
		})
	}

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "jackc API server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-sigChan
	shutdown()
}

func printHelp() {
	fmt.Printf(`jackc %s

Usage: jackc [options] <file.jack | directory>
       jackc -api-server [-port N]

Options:
  -help          Show this help message
  -version       Show version information
  -config FILE   Load compiler/diagnostics settings from a TOML file
  -jobs N        Maximum concurrent file compiles (default: number of CPUs)
  -tui           Browse compiled classes in a terminal tree view
  -gui           Browse compiled classes in a desktop window
  -api-server    Start HTTP API server mode (no source path required)
  -port N        API server port (default: 8080, used with -api-server)

Examples:
  jackc Main.jack
  jackc ./Pong
  jackc -tui ./Pong
  jackc -api-server -port 3000
`, Version)
}
