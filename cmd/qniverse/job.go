package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"qniverse/internal/emit"
	"qniverse/internal/translate"
)

// job is one source file translated for one target.
type job struct {
	translator *translate.Translator
	logger     *zap.Logger
	stdout     io.Writer
	path       string
	output     string // empty for stdout
	platform   emit.Platform
	backend    string
}

func (j *job) run() error {
	src, err := os.ReadFile(j.path)
	if err != nil {
		return errors.Wrap(err, "read source")
	}
	out, err := j.translator.Translate(string(src), j.platform, j.backend)
	if err != nil {
		return errors.Wrap(err, j.path)
	}
	if j.output == "" {
		_, err := fmt.Fprint(j.stdout, out)
		return errors.Wrap(err, "write output")
	}
	if err := os.WriteFile(j.output, []byte(out), 0644); err != nil {
		return errors.Wrap(err, "write output")
	}
	j.logger.Info("wrote program",
		zap.String("source", j.path),
		zap.String("output", j.output),
		zap.Stringer("platform", j.platform))
	return nil
}

// resolveSource finds the input file, adding the .qasm extension when the
// name was given without it.
func resolveSource(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}
	if !strings.HasSuffix(name, ".qasm") {
		if _, err := os.Stat(name + ".qasm"); err == nil {
			return name + ".qasm", nil
		}
	}
	return "", errors.Errorf("file not found: %s", name)
}

// backendTable lists every platform with its accepted backend names.
func backendTable() string {
	var sb strings.Builder
	for _, p := range emit.Platforms() {
		sb.WriteString(headStyle.Render(p.String()))
		sb.WriteString("\n")
		sb.WriteString("  " + dimStyle.Render("(default simulator)") + "\n")
		for _, b := range emit.Backends(p) {
			sb.WriteString("  " + b + "\n")
		}
	}
	return sb.String()
}
