package main

import (
	"fmt"
	"log"

	"github.com/avdeev/ordertrack/internal"
)

// Prints one signed token for manual testing, using the same configuration
// surface as the server.
func main() {
	cfg, err := internal.NewConfig()
	if err != nil {
		log.Fatal(err)
	}

	gate := internal.NewTokenGate(cfg.JWTKey, cfg.JWTIssuer, cfg.JWTLifetime)

	token, err := gate.IssueToken()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Test token", token)
}
