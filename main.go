package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/opensh/opensh/cli"
	"github.com/opensh/opensh/config"
	"github.com/opensh/opensh/executor"
	"github.com/opensh/opensh/metrics"
	"github.com/opensh/opensh/state"
	"github.com/opensh/opensh/utils"
	"github.com/opensh/opensh/version"
)

const versionCheckTimeout = 5 * time.Second

var processStartTime = time.Now()

func main() {
	args := cli.PreprocessArgs(os.Args[1:])
	opts, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if opts.Version {
		printVersion()
		return
	}

	loadDotenv()

	logger, err := utils.InitializeLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "opensh: could not initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	home, _ := os.UserHomeDir()
	rcFile, _ := utils.GetEnv("OPENSH_RCFILE", filepath.Join(home, config.DefaultRCFile), logger)

	cm := config.New(logger)
	cm.Load(rcFile)
	applyOptionOverrides(cm, opts)

	sh := state.New(logger, "opensh")
	sh.Options.ErrExit = opts.ErrExit
	sh.Options.NoUnset = opts.NoUnset
	sh.Options.PosixMode = opts.PosixStrict
	sh.Options.XTrace = opts.XTrace
	sh.Options.IFS = cm.GetString("IFS")
	sh.ScriptArgs = opts.ScriptArgs
	sh.Interactive = opts.Interactive || (opts.Command == "" && opts.ScriptFile == "" && !opts.ReadFromStdin && isTerminal(os.Stdin))
	sh.Options.Monitor = sh.Interactive

	ex := executor.New(sh, logger)
	ex.Metrics = metrics.NewCommandMetrics()

	aliasFile := filepath.Join(home, config.DefaultAliasFile)
	if err := cli.LoadAliases(sh, aliasFile); err != nil {
		logger.Warn("could not load aliases", zap.String("path", aliasFile), zap.Error(err))
	}

	startMetricsServerIfConfigured(logger)

	if opts.DumpAliases != "" {
		if err := cli.SaveAliases(sh, opts.DumpAliases); err != nil {
			fmt.Fprintf(os.Stderr, "opensh: --dump-aliases: %v\n", err)
			os.Exit(1)
		}
		return
	}

	switch {
	case opts.Command != "":
		sh.ScriptName = "opensh"
		os.Exit(runAndExit(ex, opts.Command))

	case opts.ScriptFile != "":
		sh.ScriptName = opts.ScriptFile
		src, err := os.ReadFile(opts.ScriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "opensh: %s: %v\n", opts.ScriptFile, err)
			os.Exit(127)
		}
		os.Exit(runAndExit(ex, string(src)))

	case opts.ReadFromStdin:
		sh.ScriptName = "-"
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "opensh: stdin: %v\n", err)
			os.Exit(1)
		}
		os.Exit(runAndExit(ex, string(data)))

	default:
		sh.ScriptName = "opensh"
		runInteractive(logger, sh, ex, cm, rcFile, opts)
	}
}

// sourceIfExists runs path's contents as shell source if it exists,
// reporting whether it was found (used to pick the first of several
// candidate login profile names, matching bash's own fallback order).
func sourceIfExists(ex *executor.Executor, path string) bool {
	src, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	if _, err := ex.RunSource(string(src)); err != nil {
		fmt.Fprintf(os.Stderr, "opensh: %s: %v\n", path, err)
	}
	return true
}

func runAndExit(ex *executor.Executor, src string) int {
	status, err := ex.RunSource(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, "opensh: "+err.Error())
	}
	return status
}

func runInteractive(logger *zap.Logger, sh *state.Shell, ex *executor.Executor, cm *config.ConfigManager, rcFile string, opts *cli.Options) {
	var env *cli.EnvironmentManager
	if !opts.NoRC {
		if opts.Login {
			sourceIfExists(ex, "/etc/profile")
			home, _ := os.UserHomeDir()
			for _, name := range []string{".opensh_profile", ".profile"} {
				if sourceIfExists(ex, filepath.Join(home, name)) {
					break
				}
			}
		}
		if rc, err := os.ReadFile(rcFile); err == nil {
			if _, err := ex.RunSource(string(rc)); err != nil {
				fmt.Fprintf(os.Stderr, "opensh: %s: %v\n", rcFile, err)
			}
		}
		env = cli.NewEnvironmentManager(logger, cm, rcFile)
		env.Watch()
	}

	repl := cli.NewREPL(logger, sh, ex, cm, env)
	status := repl.Run()

	if home, err := os.UserHomeDir(); err == nil {
		if err := cli.SaveAliases(sh, filepath.Join(home, config.DefaultAliasFile)); err != nil {
			logger.Warn("could not save aliases", zap.Error(err))
		}
	}
	os.Exit(status)
}

// applyOptionOverrides applies the boolean shell options implied by flags
// on top of whatever Load already seeded from the environment/rc file,
// since flags outrank both (SPEC_FULL.md §6.3).
func applyOptionOverrides(cm *config.ConfigManager, opts *cli.Options) {
	if opts.ErrExit {
		cm.SetBool("errexit", true)
	}
	if opts.NoUnset {
		cm.SetBool("nounset", true)
	}
	if opts.XTrace {
		cm.SetBool("xtrace", true)
	}
	if opts.PosixStrict {
		cm.SetBool("posix", true)
	}
}

func startMetricsServerIfConfigured(logger *zap.Logger) {
	addr := os.Getenv("OPENSH_METRICS_ADDR")
	if addr == "" {
		return
	}
	port, err := strconv.Atoi(addr)
	if err != nil {
		logger.Warn("OPENSH_METRICS_ADDR must be a port number", zap.String("value", addr), zap.Error(err))
		return
	}
	metrics.NewInfoMetrics(version.GetCurrentVersion().Version, processStartTime)
	srv := metrics.NewServer(port, logger)
	srv.Start()
}

func printVersion() {
	info := version.GetCurrentVersion()
	ctx, cancel := context.WithTimeout(context.Background(), versionCheckTimeout)
	defer cancel()
	latest, hasUpdate, checkErr := version.CheckLatestVersionWithContext(ctx)
	fmt.Println(version.FormatVersionInfo(info, latest, hasUpdate, checkErr))
}

func loadDotenv() {
	envFilePath := os.Getenv("OPENSH_DOTENV")
	if envFilePath == "" {
		envFilePath = ".env"
	}
	_ = godotenv.Load(envFilePath)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
