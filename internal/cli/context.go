// Package cli provides the command-line interface for the harvest application.
package cli

import "github.com/job-seekers/harvest/internal/app"

var globalApp *app.Application

// SetApp stores the shared Application for commands to use.
func SetApp(a *app.Application) {
	globalApp = a
}

// App returns the shared Application, or nil before initialization.
func App() *app.Application {
	return globalApp
}
