package config_test

import (
	"context"
	"fmt"
	"log"

	"github.com/apillon/apillon-go/config"
)

func ExampleWithContext() {
	cfg := &config.Config{API: config.APIConfig{URL: "https://api.apillon.io"}}

	// Store config in context
	ctx := config.WithContext(context.Background(), cfg)

	// Retrieve later (e.g., in a subcommand)
	retrieved, err := config.FromContext(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Retrieved API: %s\n", retrieved.API.URL)
	// Output: Retrieved API: https://api.apillon.io
}
