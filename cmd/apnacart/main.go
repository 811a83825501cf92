// Package main is the entry point of the ApnaCart storefront.
// A single binary serves the HTTP API and runs the catalog maintenance
// commands.
//
// 12-Factor App compilance:
//   - I. Codebase: Single codebase tracked in version control
//   - II. Dependencies: Managed via go.mod
//   - III. Config: Configuration via environment variables
//   - V. Build, release, run: Admin tasks (migrate, seed) ship as commands
//   - VII. Port Binding: Self-contained HTTP server
//   - IX. Disposability: Graceful shutdown
//   - XI. Logs: Structured logging to stdout
//
// Usage:
//
//	go run ./cmd/apnacart serve
//	go run ./cmd/apnacart seed --file vegetables.yaml
//	go run ./cmd/apnacart link-images --dry-run
//
// Environment Variables:
//
//	APNA_ENVIRONMENT  - Deployment environment (development, staging, production)
//	APNA_SERVER_PORT  - HTTP server port (default: 8080, PORT is honoured too)
//	DATABASE_URL      - Catalog database (postgres:// URL or SQLite file: DSN)
package main

import "github.com/hapkiduki/apnacart/internal/interfaces/cli"

func main() {
	cli.Execute()
}
