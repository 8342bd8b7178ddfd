// Command token prints a signed bearer token for local testing.
package main

import (
	"flag"
	"fmt"
	"os"

	"storefront/internal/auth"
	"storefront/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	userID := flag.Int64("user", 0, "user id to embed in the token")
	role := flag.String("role", auth.RoleCustomer, "role claim: customer or admin")
	flag.Parse()

	_ = godotenv.Load()

	if *userID <= 0 {
		fmt.Fprintln(os.Stderr, "Error: -user must be a positive id")
		os.Exit(2)
	}
	if *role != auth.RoleCustomer && *role != auth.RoleAdmin {
		fmt.Fprintf(os.Stderr, "Error: unknown role %q\n", *role)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	token, err := tokens.Issue(*userID, *role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to issue token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
