package main

import (
	"accordee/client/pkg/cmd"
	"log"
)

func main() {
	accordeeCmd, err := cmd.New()
	if err != nil {
		log.Fatal(err)
	}

	if err := accordeeCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
