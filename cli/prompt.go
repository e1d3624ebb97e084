package cli

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/opensh/opensh/state"
)

// maxPromptPathWidth bounds how much of $PWD \w expands to before it is
// truncated with a leading ellipsis, measured in display columns rather
// than bytes so multi-byte path components truncate correctly.
const maxPromptPathWidth = 40

// renderPrompt expands the PS1/PS2 backslash escapes spec.md §6 and
// SPEC_FULL.md §6.5 define (\u \h \w \W \d \t \T \A \\ \$ \! \# \[ \]) against
// live shell state, and wraps ANSI color runs between \[ and \] with the
// SOH/STX markers colorizeForPrompt uses so readline sees the correct
// visible width.
func renderPrompt(template string, sh *state.Shell, histNum int) string {
	var b strings.Builder
	r := []rune(template)
	for i := 0; i < len(r); i++ {
		if r[i] != '\\' || i+1 >= len(r) {
			b.WriteRune(r[i])
			continue
		}
		i++
		switch r[i] {
		case 'u':
			b.WriteString(currentUsername())
		case 'h':
			b.WriteString(shortHostname())
		case 'H':
			b.WriteString(fullHostname())
		case 'w':
			b.WriteString(truncatePromptPath(displayPath(sh.CWD)))
		case 'W':
			b.WriteString(filepath.Base(sh.CWD))
		case 'd':
			b.WriteString(time.Now().Format("Mon Jan 02"))
		case 't':
			b.WriteString(time.Now().Format("15:04:05"))
		case 'T':
			b.WriteString(time.Now().Format("03:04:05"))
		case 'A':
			b.WriteString(time.Now().Format("15:04"))
		case '\\':
			b.WriteByte('\\')
		case '$':
			if os.Geteuid() == 0 {
				b.WriteByte('#')
			} else {
				b.WriteByte('$')
			}
		case '!':
			b.WriteString(strconv.Itoa(histNum))
		case '#':
			b.WriteString(strconv.Itoa(sh.CommandNumber))
		case '[':
			b.WriteString(ignoreStart)
		case ']':
			b.WriteString(ignoreEnd)
		case 'n':
			b.WriteByte('\n')
		default:
			b.WriteByte('\\')
			b.WriteRune(r[i])
		}
	}
	return b.String()
}

func currentUsername() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return os.Getenv("USER")
}

func shortHostname() string {
	h := fullHostname()
	if idx := strings.IndexByte(h, '.'); idx != -1 {
		return h[:idx]
	}
	return h
}

func fullHostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "localhost"
	}
	return h
}

// displayPath abbreviates the user's home directory to ~, bash's \w
// convention.
func displayPath(cwd string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return cwd
	}
	if cwd == home {
		return "~"
	}
	if strings.HasPrefix(cwd, home+string(filepath.Separator)) {
		return "~" + cwd[len(home):]
	}
	return cwd
}

// truncatePromptPath keeps \w from overrunning the terminal on deeply
// nested working directories, measuring width with go-runewidth so wide
// (e.g. CJK) path components are not undercounted.
func truncatePromptPath(p string) string {
	if runewidth.StringWidth(p) <= maxPromptPathWidth {
		return p
	}
	parts := strings.Split(p, string(filepath.Separator))
	for len(parts) > 1 {
		parts = parts[1:]
		candidate := "..." + string(filepath.Separator) + filepath.Join(parts...)
		if runewidth.StringWidth(candidate) <= maxPromptPathWidth {
			return candidate
		}
	}
	return fmt.Sprintf("...%s%s", string(filepath.Separator), filepath.Base(p))
}
