// Command checkout drives the payment submission from a terminal: it posts
// order details to a running shop and confirms the intent with the provider.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "checkout",
		Short:   "Submit a checkout against a running tea shop",
		Version: Version,
	}

	rootCmd.AddCommand(submitCmd())
	rootCmd.AddCommand(statusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
