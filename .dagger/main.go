// Tutor CI
//
// Package main builds and tests the tutor CLI reproducibly, locally and in
// GitHub actions.
package main

import (
	"context"

	"dagger/tutor/internal/dagger"
)

// Tutor is the main module for the tutor CI pipeline
type Tutor struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Tutor CI module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", ".direnv", "build", "tmp", "_examples"]
	source *dagger.Directory,
) *Tutor {
	return &Tutor{
		Source: source,
	}
}

// goContainer returns a Go container with the module caches and the project
// source mounted. The CLI is pure Go, so CGO stays off.
func (t *Tutor) goContainer() *dagger.Container {
	return dag.Container().
		From("golang:1.25-alpine").
		WithEnvVariable("CGO_ENABLED", "0").
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithWorkdir("/src").
		WithDirectory("/src", t.Source)
}

// Test runs the unit and end-to-end tests via "go test"
//
// +check
func (t *Tutor) Test(ctx context.Context) (string, error) {
	return t.goContainer().
		WithExec([]string{"go", "test", "./..."}).
		Stdout(ctx)
}
