// Command plandexctl annotates and queries planning documents offline,
// without a fragment store or an embedding provider.
package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
