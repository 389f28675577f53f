package main

import (
	"context"
	"errors"
	"fmt"

	"dagger/tutor/internal/dagger"
)

// CheckGoModTidy fails when "go mod tidy" would change go.mod or go.sum.
//
// +check
func (t *Tutor) CheckGoModTidy(ctx context.Context) (string, error) {
	_, err := t.goContainer().
		WithExec([]string{"go", "mod", "tidy", "-diff"}).
		Stdout(ctx)
	if err != nil {
		return "", checkFailed("go.mod and go.sum are not tidy, run 'go mod tidy'", err)
	}

	return "go.mod and go.sum are tidy", nil
}

// Vet runs "go vet" over every package.
//
// +check
func (t *Tutor) Vet(ctx context.Context) (string, error) {
	out, err := t.goContainer().
		WithExec([]string{"go", "vet", "./..."}).
		Stdout(ctx)
	if err != nil {
		return "", checkFailed("go vet reported problems", err)
	}

	return out, nil
}

// checkFailed attaches the command output of a failed exec to msg.
func checkFailed(msg string, err error) error {
	var e *dagger.ExecError
	if errors.As(err, &e) {
		return fmt.Errorf("%s\n\n%s%s", msg, e.Stdout, e.Stderr)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
