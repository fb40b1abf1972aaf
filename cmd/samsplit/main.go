// cmd/samsplit/main.go
package main

import (
	"os"

	"samsplit/internal/app"
)

func main() {
	// Records stream straight to stdout; buffering whole runs in memory
	// would defeat block-at-a-time decoding.
	os.Exit(app.Run(os.Args[1:], os.Stdout, os.Stderr))
}
