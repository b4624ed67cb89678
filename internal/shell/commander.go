// Package shell abstracts external command execution so git and launcher
// calls can be faked in tests.
package shell

import (
	"fmt"
	"os/exec"
	"strings"
)

type Commander interface {
	Run(name string, args ...string) ([]byte, error)
	RunDir(dir, name string, args ...string) ([]byte, error)
}

type ExecCommander struct{}

func (e *ExecCommander) Run(name string, args ...string) ([]byte, error) {
	return e.RunDir("", name, args...)
}

func (e *ExecCommander) RunDir(dir, name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return out, nil
}
