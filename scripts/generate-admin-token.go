//go:build ignore

// This script generates an admin bearer token for the coordinator's
// admin-gated endpoints (operator registry, pause, assisted recovery).
// Run with: go run scripts/generate-admin-token.go
//
// Environment:
//   ADMIN_JWT_SECRET - must match admin.jwt_secret in config.yaml
//   ADMIN_SUBJECT    - token subject (default "ops-admin")
//   TOKEN_TTL        - lifetime, e.g. "1h" (default)

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/propchain-labs/bridge-coordinator/pkg/auth"
)

func main() {
	secret := os.Getenv("ADMIN_JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "ADMIN_JWT_SECRET is required")
		os.Exit(1)
	}

	subject := os.Getenv("ADMIN_SUBJECT")
	if subject == "" {
		subject = "ops-admin"
	}

	ttl := time.Hour
	if raw := os.Getenv("TOKEN_TTL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid TOKEN_TTL: %v\n", err)
			os.Exit(1)
		}
		ttl = parsed
	}

	token, err := auth.NewAdminVerifier(secret).IssueToken(subject, ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to issue token: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("subject: %s\nexpires: %s\n\n%s\n", subject, time.Now().Add(ttl).Format(time.RFC3339), token)
}
