package main

import (
	"fmt"
	"os"

	"github.com/shashiranjanraj/billmate/internal/server"

	// Register migrations and seeders so `billmate migrate`/`seed` and a
	// fresh boot see the same schema definitions.
	_ "github.com/shashiranjanraj/billmate/database/migrations"
	_ "github.com/shashiranjanraj/billmate/database/seeders"
)

func main() {
	if err := server.Start(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
