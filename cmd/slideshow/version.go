package main

import "fmt"

// Build-time version identity, injected via -ldflags:
//
//	go build -ldflags="-X main.commitHash=$(git rev-parse --short HEAD) -X main.buildTime=$(date -u +%Y%m%dT%H%M%SZ)" ./cmd/slideshow
//
// In development (go run), the defaults "dev" and "unknown" are used.
var (
	commitHash = "dev"
	buildTime  = "unknown"
)

func versionString() string {
	return fmt.Sprintf("%s (built %s)", commitHash, buildTime)
}
