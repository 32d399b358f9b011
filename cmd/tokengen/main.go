// Package main mints access and refresh tokens signed with the development
// secret for local API testing. The tokens do NOT work against a server
// configured with its own RHYM_JWT_SECRET.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	identity "rhymcaffer/internal/identity/models"
	jwttoken "rhymcaffer/internal/jwt_token"
	"rhymcaffer/internal/platform/config"
)

const defaultIssuer = "rhymcaffer"

type tokenOutput struct {
	Token     string            `json:"token"`
	Type      string            `json:"type"`
	JTI       string            `json:"jti"`
	ExpiresAt time.Time         `json:"expires_at"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	accessCmd := flag.NewFlagSet("access", flag.ExitOnError)
	accessUserID := accessCmd.Int64("user-id", 1, "Numeric user ID (token subject)")
	accessUsername := accessCmd.String("username", "dev", "Username claim")
	accessRoles := accessCmd.String("roles", identity.RoleUser, "Comma-separated roles")
	accessAdmin := accessCmd.Bool("admin", false, "Add "+identity.RoleAdmin+" to the roles")
	accessTTL := accessCmd.Duration("ttl", 15*time.Minute, "Token time-to-live")
	accessJSON := accessCmd.Bool("json", false, "Output as JSON")

	refreshCmd := flag.NewFlagSet("refresh", flag.ExitOnError)
	refreshUserID := refreshCmd.Int64("user-id", 1, "Numeric user ID (token subject)")
	refreshTTL := refreshCmd.Duration("ttl", 24*time.Hour, "Token time-to-live")
	refreshJSON := refreshCmd.Bool("json", false, "Output as JSON")

	secret := envOr("RHYM_JWT_SECRET", config.DevJWTSecret)
	issuer := envOr("RHYM_JWT_ISSUER", defaultIssuer)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	switch os.Args[1] {
	case "access":
		_ = accessCmd.Parse(os.Args[2:])
		roles := splitRoles(*accessRoles)
		if *accessAdmin {
			roles = append(roles, identity.RoleAdmin)
		}
		svc := jwttoken.NewJWTService(secret, issuer, *accessTTL, 0, 0)
		issued, err := svc.GenerateAccessToken(ctx, *accessUserID, *accessUsername, roles)
		emit(issued, err, jwttoken.TypeAccess, *accessJSON, map[string]string{
			"header": "Authorization: Bearer " + issued.Token,
			"curl":   fmt.Sprintf("curl -H 'Authorization: Bearer %s' http://localhost:8080/api/users", issued.Token),
		})
	case "refresh":
		_ = refreshCmd.Parse(os.Args[2:])
		svc := jwttoken.NewJWTService(secret, issuer, 0, *refreshTTL, 0)
		issued, err := svc.GenerateRefreshToken(ctx, *refreshUserID)
		emit(issued, err, jwttoken.TypeRefresh, *refreshJSON, map[string]string{
			"cookie": "refreshToken=" + issued.Token,
			"note":   "the server only accepts refresh tokens it issued itself",
		})
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tokengen - Generate test tokens for the rhymcaffer API

WARNING: Tokens are signed with RHYM_JWT_SECRET, or the development secret
         when it is unset. Only use for local development and testing.

Usage:
  tokengen <command> [flags]

Commands:
  access    Generate an access token
  refresh   Generate a refresh token

Examples:
  tokengen access -user-id 3 -username alice
  tokengen access -admin -ttl 1h
  tokengen refresh -json`)
}

func emit(issued jwttoken.IssuedToken, err error, typ string, asJSON bool, usage map[string]string) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if asJSON {
		out := tokenOutput{Token: issued.Token, Type: typ, JTI: issued.JTI, ExpiresAt: issued.ExpiresAt, Usage: usage}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	fmt.Println(issued.Token)
	fmt.Fprintf(os.Stderr, "\n%s token, expires %s\n", typ, issued.ExpiresAt.Format(time.RFC3339))
	for k, v := range usage {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", k, v)
	}
}

func splitRoles(s string) []string {
	var roles []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
