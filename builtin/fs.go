package builtin

import (
	"fmt"
	"os"

	"github.com/opensh/opensh/state"
)

func builtinCd(sh *state.Shell, args []string) int {
	target := sh.Vars.Get("HOME")
	if len(args) > 1 {
		target = args[1]
		if target == "-" {
			target = sh.Vars.Get("OLDPWD")
			fmt.Println(target)
		}
	}
	if target == "" {
		fmt.Fprintln(os.Stderr, "cd: HOME not set")
		return 1
	}
	old := sh.CWD
	if err := os.Chdir(target); err != nil {
		fmt.Fprintln(os.Stderr, "cd:", err)
		return 1
	}
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cd:", err)
		return 1
	}
	sh.CWD = cwd
	_ = sh.Vars.Set("OLDPWD", old)
	_ = sh.Vars.Set("PWD", cwd)
	return 0
}

func builtinPwd(sh *state.Shell, args []string) int {
	fmt.Println(sh.CWD)
	return 0
}
