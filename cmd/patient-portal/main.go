// @title Patient Portal API
// @version 1.0
// @description Registration, cookie sessions and self-service patient records.
// @BasePath /api
// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name token
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "patient-portal",
		Short:        "Patient records portal API",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(clientCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
