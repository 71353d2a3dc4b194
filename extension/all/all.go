// Package all imports all built-in tractome extensions.
// Import this package to register all built-in commands.
package all

import (
	// Built-in extensions - each registers itself via init()
	_ "github.com/maharshi-gor/tractome/extension/core"
	_ "github.com/maharshi-gor/tractome/extension/inspect"
	_ "github.com/maharshi-gor/tractome/extension/tabular"
	_ "github.com/maharshi-gor/tractome/extension/tractogram"
)
