// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/lander/internal/adapters/config"
	_ "go.trai.ch/lander/internal/adapters/fs"
	_ "go.trai.ch/lander/internal/adapters/logger"
	_ "go.trai.ch/lander/internal/adapters/shell"
	_ "go.trai.ch/lander/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/lander/internal/app"
)
