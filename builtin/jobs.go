package builtin

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/opensh/opensh/state"
)

func builtinJobs(sh *state.Shell, args []string) int {
	all := sh.Jobs.All()
	for _, j := range all {
		mark := "-"
		if len(all) > 0 && j.ID == all[len(all)-1].ID {
			mark = "+"
		}
		text := ""
		if len(j.Processes) > 0 {
			text = j.Processes[len(j.Processes)-1].CommandText
		}
		fmt.Printf("[%d]%s %s\t%s\n", j.ID, mark, jobStateLabel(j.State), text)
	}
	return 0
}

func jobStateLabel(s state.JobState) string {
	switch s {
	case state.JobRunning:
		return "Running"
	case state.JobStopped:
		return "Stopped"
	default:
		return "Done"
	}
}

func parseJobSpec(sh *state.Shell, arg string) (*state.Job, error) {
	arg = strings.TrimPrefix(arg, "%")
	if arg == "" || arg == "+" || arg == "%" {
		jobs := sh.Jobs.All()
		if len(jobs) == 0 {
			return nil, fmt.Errorf("no current job")
		}
		return jobs[len(jobs)-1], nil
	}
	id, err := strconv.Atoi(arg)
	if err != nil {
		return nil, fmt.Errorf("%s: no such job", arg)
	}
	j, ok := sh.Jobs.Get(id)
	if !ok {
		return nil, fmt.Errorf("%%%d: no such job", id)
	}
	return j, nil
}

func builtinFg(sh *state.Shell, args []string) int {
	spec := ""
	if len(args) > 1 {
		spec = args[1]
	}
	j, err := parseJobSpec(sh, spec)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fg:", err)
		return 1
	}
	_ = syscall.Kill(-j.PGID, syscall.SIGCONT)
	j.State = state.JobRunning
	status := 0
	for _, p := range j.Processes {
		var ws syscall.WaitStatus
		_, _ = syscall.Wait4(p.PID, &ws, 0, nil)
		status = ws.ExitStatus()
	}
	sh.Jobs.Remove(j.ID)
	return status
}

func builtinBg(sh *state.Shell, args []string) int {
	spec := ""
	if len(args) > 1 {
		spec = args[1]
	}
	j, err := parseJobSpec(sh, spec)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bg:", err)
		return 1
	}
	_ = syscall.Kill(-j.PGID, syscall.SIGCONT)
	j.State = state.JobRunning
	fmt.Printf("[%d]+ %s &\n", j.ID, jobCommandText(j))
	return 0
}

func jobCommandText(j *state.Job) string {
	if len(j.Processes) == 0 {
		return ""
	}
	return j.Processes[len(j.Processes)-1].CommandText
}

func builtinWait(sh *state.Shell, args []string) int {
	if len(args) == 1 {
		status := 0
		for _, j := range sh.Jobs.All() {
			for _, p := range j.Processes {
				var ws syscall.WaitStatus
				_, _ = syscall.Wait4(p.PID, &ws, 0, nil)
				status = ws.ExitStatus()
			}
			sh.Jobs.Remove(j.ID)
		}
		return status
	}
	status := 0
	for _, spec := range args[1:] {
		j, err := parseJobSpec(sh, spec)
		if err != nil {
			continue
		}
		for _, p := range j.Processes {
			var ws syscall.WaitStatus
			_, _ = syscall.Wait4(p.PID, &ws, 0, nil)
			status = ws.ExitStatus()
		}
		sh.Jobs.Remove(j.ID)
	}
	return status
}
