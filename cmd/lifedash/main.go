// Command lifedash is the operator CLI: it runs utterances through the
// pipeline locally and mints development tokens.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
