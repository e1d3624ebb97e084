package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/opensh/opensh/config"
	"github.com/opensh/opensh/executor"
	"github.com/opensh/opensh/state"
)

// REPL drives opensh's interactive read-eval-print loop: it owns the line
// reader, the PS1/PS2-rendering prompt, HISTFILE persistence, and the rc
// file watcher, and feeds whole commands to an *executor.Executor running
// against one *state.Shell (spec.md §6, SPEC_FULL.md §6.1-§6.5).
type REPL struct {
	logger *zap.Logger
	sh     *state.Shell
	ex     *executor.Executor
	cm     *config.ConfigManager

	hist    *HistoryManager
	history []string

	env *EnvironmentManager

	in  *bufio.Reader
	out io.Writer

	acc *LineAccumulator
}

// NewREPL wires a REPL around an already-constructed Shell/Executor pair.
func NewREPL(logger *zap.Logger, sh *state.Shell, ex *executor.Executor, cm *config.ConfigManager, env *EnvironmentManager) *REPL {
	return &REPL{
		logger: logger,
		sh:     sh,
		ex:     ex,
		cm:     cm,
		hist:   NewHistoryManager(logger, cm),
		env:    env,
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		acc:    NewLineAccumulator(),
	}
}

// Run loads history, runs the interactive loop until exit or EOF, then
// persists history and returns the shell's final exit status.
func (r *REPL) Run() int {
	if loaded, err := r.hist.LoadHistory(); err == nil {
		r.history = loaded
	}

	r.ignoreInterruptAtPrompt()
	done := make(chan struct{})
	defer close(done)
	go r.notifyFinishedJobs(done)

	for {
		src, ok := r.readCommand()
		if !ok {
			break
		}
		if src == "" {
			continue
		}

		r.history = append(r.history, src)
		status, err := r.ex.RunSource(src)
		r.sh.LastStatus = status
		if err != nil {
			fmt.Fprintln(os.Stderr, "opensh: "+err.Error())
		}
		if r.sh.Exiting {
			break
		}
	}

	if err := r.hist.SaveHistory(r.history); err != nil {
		r.logger.Warn("could not save history", zap.Error(err))
	}
	if r.env != nil {
		r.env.Close()
	}
	return r.sh.LastStatus
}

// readCommand reads one logical command from stdin, issuing PS2 while the
// lexer/parser reports the input as incomplete. ok is false at EOF with
// nothing pending.
func (r *REPL) readCommand() (string, bool) {
	r.acc.Reset()
	for {
		template := r.cm.GetString("PS1")
		if r.acc.Pending() {
			template = r.cm.GetString("PS2")
		}
		prompt := renderPrompt(template, r.sh, len(r.history)+1)
		fmt.Fprint(r.out, prompt)

		line, err := r.in.ReadString('\n')
		if err != nil {
			if line == "" {
				if !r.acc.Pending() {
					fmt.Fprintln(r.out)
					return "", false
				}
				return r.acc.Source(), true
			}
		}
		line = trimNewline(line)
		r.acc.Add(line)

		src := r.acc.Source()
		if needsContinuation(src) {
			continue
		}
		return src, true
	}
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

// notifyFinishedJobs polls the job table for background jobs that have
// completed and prints bash's "[n]+ Done  cmd" line for each, refreshing
// the prompt afterward so the notification doesn't land mid-edit.
func (r *REPL) notifyFinishedJobs(done <-chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			for _, j := range r.sh.Jobs.All() {
				if j.State != state.JobDone || j.Foreground {
					continue
				}
				fmt.Fprintf(r.out, "\n[%d]+ Done\t%s\n", j.ID, jobText(j))
				r.sh.Jobs.Remove(j.ID)
				r.forceRefreshPrompt()
			}
		}
	}
}

func jobText(j *state.Job) string {
	if len(j.Processes) == 0 {
		return ""
	}
	return j.Processes[len(j.Processes)-1].CommandText
}

// ignoreInterruptAtPrompt mirrors bash: Ctrl-C at an empty prompt starts a
// fresh line instead of killing the shell. Foreground external commands
// are unaffected, since the terminal's controlling process group is
// reassigned to them while they run (executor/launcher_unix.go).
func (r *REPL) ignoreInterruptAtPrompt() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	go func() {
		for range sigs {
			fmt.Fprintln(r.out)
		}
	}()
}
