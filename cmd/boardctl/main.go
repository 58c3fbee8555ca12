package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewCLI(os.Stdout, os.Stderr).Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
