package main

import (
	"fmt"
	goos "os"
)

func main() {
	fmt.Println("starting")
	defer fmt.Println("deferred")

	if len(goos.Args) > 5 {
		goos.Exit(2) // want "direct os.Exit call in main function"
	}

	cleanup := func() {
		goos.Exit(0)
	}
	_ = cleanup

	goos.Exit(1) // want "direct os.Exit call in main function"
}

func helper() {
	goos.Exit(3)
}
