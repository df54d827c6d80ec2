// Command fundqa answers factual questions about mutual funds from scraped
// fund records.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
