// Command fydkg runs threshold key generations among simulated
// participants.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
