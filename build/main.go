// Package main defines the repository maintenance tasks. Run with: go run ./build <task>.
package main

import (
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/goyek/goyek/v2"
)

func run(a *goyek.A, name string, args ...string) {
	a.Helper()
	a.Logf("%s %v", name, args)
	cmd := exec.CommandContext(a.Context(), name, args...)
	cmd.Stdout = a.Output()
	cmd.Stderr = a.Output()
	if err := cmd.Run(); err != nil {
		a.Error(err)
	}
}

var vet = goyek.Define(goyek.Task{
	Name:  "vet",
	Usage: "Run go vet on all packages",
	Action: func(a *goyek.A) {
		run(a, "go", "vet", "./...")
	},
})

var test = goyek.Define(goyek.Task{
	Name:  "test",
	Usage: "Run unit tests and CLI scripts with the race detector",
	Action: func(a *goyek.A) {
		run(a, "go", "test", "-race", "./...")
	},
})

var generate = goyek.Define(goyek.Task{
	Name:  "generate",
	Usage: "Regenerate port mocks",
	Action: func(a *goyek.A) {
		run(a, "go", "generate", "./internal/core/ports/...")
	},
})

var binary = goyek.Define(goyek.Task{
	Name:  "build",
	Usage: "Build bin/swig with version information",
	Action: func(a *goyek.A) {
		version := os.Getenv("VERSION")
		if version == "" {
			version = "dev"
		}
		ldflags := "-X go.trai.ch/swig/internal/build.Version=" + version +
			" -X go.trai.ch/swig/internal/build.Date=" + time.Now().UTC().Format(time.RFC3339)
		if commit, err := exec.CommandContext(a.Context(), "git", "rev-parse", "--short", "HEAD").Output(); err == nil {
			ldflags += " -X go.trai.ch/swig/internal/build.Commit=" + strings.TrimSpace(string(commit))
		}
		run(a, "go", "build", "-ldflags", ldflags, "-o", "bin/swig", "./cmd/swig")
	},
})

var _ = goyek.Define(goyek.Task{
	Name:  "all",
	Usage: "Vet, test and build",
	Deps:  goyek.Deps{vet, test, binary},
})

func main() {
	goyek.SetDefault(goyek.Define(goyek.Task{
		Name:  "ci",
		Usage: "Everything CI runs",
		Deps:  goyek.Deps{generate, vet, test},
	}))
	goyek.Main(os.Args[1:])
}
