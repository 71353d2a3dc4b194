/*
Copyright © 2026 Maharshi Gor
*/
package main

import (
	"github.com/maharshi-gor/tractome/cmd"

	// Import extensions - each registers itself via init()
	_ "github.com/maharshi-gor/tractome/extension/all"
)

func main() {
	cmd.Execute()
}
