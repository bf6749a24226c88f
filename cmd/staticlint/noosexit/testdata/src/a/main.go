package main

import (
	"log"
	"os"
)

func main() {
	if len(os.Args) > 2 {
		log.Fatal("too many arguments") // want "использование log.Fatal в main запрещено"
	}
	os.Exit(run()) // want "использование os.Exit в main запрещено"
}

func run() int {
	os.Exit(1)
	return 0
}
