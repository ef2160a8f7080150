package main

import (
	"log"

	"github.com/spigell/assessment-recommender/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
