// Package deps preflights the external binaries the tool shells out to.
package deps

import (
	"os/exec"
	"runtime"
)

type Dependency struct {
	Name       string
	Command    string
	InstallCmd map[string]string
}

type MissingDep struct {
	Dependency
}

var dependencies = []Dependency{
	{
		Name:    "git",
		Command: "git",
		InstallCmd: map[string]string{
			"darwin": "brew install git",
			"linux":  "sudo apt install git",
		},
	},
}

func Check() []MissingDep {
	missing := []MissingDep{}
	for _, dep := range dependencies {
		if _, err := exec.LookPath(dep.Command); err != nil {
			missing = append(missing, MissingDep{dep})
		}
	}
	return missing
}

func InstallHint(dep MissingDep) string {
	if cmd, ok := dep.InstallCmd[runtime.GOOS]; ok {
		return cmd
	}
	return "install " + dep.Name + " via your package manager"
}
