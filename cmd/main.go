package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gitlab.com/codearena.net/internal/adapter/logging"
	"gitlab.com/codearena.net/internal/config"
	logger2 "gitlab.com/codearena.net/internal/global/logger"
)

var (
	envName = flag.String("env", "", "load <env>.env instead of .env")
)

const usage = `usage: codearena [-env name] <command> [flags]

commands:
  login        log in and store the session
  signup       create an account and store the session
  logout       forget the stored session
  me           show the logged in user
  problems     list problems (-search, -difficulty)
  problem      show one problem with examples and starter code
  submit       submit a solution and follow grading live
  watch        follow an existing submission
  submissions  list your submissions
  history      show recorded results (-problem, -limit, -sync)
  serve        run the status API over the shared stores
`

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"login":       runLogin,
	"signup":      runSignup,
	"logout":      runLogout,
	"me":          runMe,
	"problems":    runProblems,
	"problem":     runProblem,
	"submit":      runSubmit,
	"watch":       runWatch,
	"submissions": runSubmissions,
	"history":     runHistory,
	"serve":       runServe,
}

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		flag.Usage()
		os.Exit(2)
	}

	if err := config.LoadEnv(*envName); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load env: %v\n", err)
		os.Exit(1)
	}
	sysCfg := config.NewSystemConfig()
	if err := sysCfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewZapLoggerWithConfig(sysCfg.LogConfig)
	logger2.Logger = logger
	defer logger.Sync()

	// Set up graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := newApp(sysCfg, logger, os.Stdout)
	err := cmd(ctx, a, args[1:])
	a.Close()
	if err != nil {
		logger.Debug("Command failed", "command", args[0], "error", err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
