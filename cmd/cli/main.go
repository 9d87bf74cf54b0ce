package main

import (
	"fmt"
	"os"

	"github.com/proxication/poi-api/cmd/cli/pois"
	"github.com/proxication/poi-api/cmd/cli/root"
	"github.com/proxication/poi-api/cmd/cli/users"
)

func main() {
	rootCmd := root.GetRoot()
	users.InitUsers(rootCmd)
	pois.InitPOIs(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
