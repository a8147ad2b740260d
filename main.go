package main

import (
	"log"

	"github.com/cheetahx/dispatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
