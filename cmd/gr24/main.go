package main

import "github.com/Simplici0/gr24/internal/cli"

func main() {
	cli.Execute()
}
