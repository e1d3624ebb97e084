package builtin

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/opensh/opensh/state"
)

// queryUmask reads the process umask without permanently changing it, the
// classic set-then-restore trick since the kernel only exposes umask as a
// side effect of changing it.
func queryUmask() int {
	old := unix.Umask(0022)
	unix.Umask(old)
	return old
}

func setUmask(mode int) {
	unix.Umask(mode)
}

// rlimitSpec names one ulimit resource flag (SPEC_FULL.md §4.7's required
// builtin list), the RLIMIT_* constant it maps to, and the scale ulimit's
// text interface reports it in: rlimits that bound a byte count are
// reported in 1024-byte blocks, except file size (-f) and core size (-c),
// which use 512-byte blocks, the way bash's ulimit does; the rest
// (open files, processes, CPU seconds) are reported as plain counts.
type rlimitSpec struct {
	flag      string
	resource  int
	blockSize uint64
}

var rlimitSpecs = map[string]rlimitSpec{
	"-f": {"-f", unix.RLIMIT_FSIZE, 512},
	"-n": {"-n", unix.RLIMIT_NOFILE, 1},
	"-u": {"-u", unix.RLIMIT_NPROC, 1},
	"-t": {"-t", unix.RLIMIT_CPU, 1},
	"-v": {"-v", unix.RLIMIT_AS, 1024},
	"-s": {"-s", unix.RLIMIT_STACK, 1024},
	"-c": {"-c", unix.RLIMIT_CORE, 512},
	"-d": {"-d", unix.RLIMIT_DATA, 1024},
	"-m": {"-m", unix.RLIMIT_RSS, 1024},
	"-l": {"-l", unix.RLIMIT_MEMLOCK, 1024},
}

// builtinUlimit implements the bash `ulimit` builtin for the resources the
// kernel exposes through getrlimit/setrlimit (SPEC_FULL.md §4.7). With no
// resource flag it behaves like `-f`; `-a` reports every known resource;
// `-H` operates on the hard limit instead of the soft limit.
func builtinUlimit(sh *state.Shell, args []string) int {
	hard := false
	flag := "-f"
	rest := args[1:]
	for len(rest) > 0 && len(rest[0]) == 2 && rest[0][0] == '-' {
		switch rest[0] {
		case "-H":
			hard = true
			rest = rest[1:]
		case "-S":
			rest = rest[1:]
		case "-a":
			return ulimitReportAll(hard)
		default:
			if _, ok := rlimitSpecs[rest[0]]; !ok {
				fmt.Fprintf(os.Stderr, "ulimit: %s: invalid option\n", rest[0])
				return 2
			}
			flag = rest[0]
			rest = rest[1:]
		}
	}
	spec := rlimitSpecs[flag]
	if len(rest) == 0 {
		return ulimitReport(spec, hard)
	}
	return ulimitSet(spec, hard, rest[0])
}

func ulimitReportAll(hard bool) int {
	for _, flag := range []string{"-c", "-d", "-f", "-l", "-m", "-n", "-s", "-t", "-u", "-v"} {
		ulimitReport(rlimitSpecs[flag], hard)
	}
	return 0
}

func ulimitReport(spec rlimitSpec, hard bool) int {
	var rlim unix.Rlimit
	if err := unix.Getrlimit(spec.resource, &rlim); err != nil {
		fmt.Fprintln(os.Stderr, "ulimit:", err)
		return 1
	}
	cur := rlim.Cur
	if hard {
		cur = rlim.Max
	}
	if cur == unix.RLIM_INFINITY {
		fmt.Println("unlimited")
		return 0
	}
	fmt.Println(cur / spec.blockSize)
	return 0
}

func ulimitSet(spec rlimitSpec, hard bool, value string) int {
	var rlim unix.Rlimit
	if err := unix.Getrlimit(spec.resource, &rlim); err != nil {
		fmt.Fprintln(os.Stderr, "ulimit:", err)
		return 1
	}
	var lim uint64
	if value == "unlimited" {
		lim = unix.RLIM_INFINITY
	} else {
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ulimit: %s: invalid number\n", value)
			return 1
		}
		lim = n * spec.blockSize
	}
	if hard {
		rlim.Max = lim
	} else {
		rlim.Cur = lim
	}
	if err := unix.Setrlimit(spec.resource, &rlim); err != nil {
		fmt.Fprintln(os.Stderr, "ulimit:", err)
		return 1
	}
	return 0
}
