package main

import (
	"os"

	// Loads .env into the environment before anything reads it; the
	// webhook URL usually lives there for local runs.
	_ "github.com/joho/godotenv/autoload"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
