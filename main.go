package main

import "locline/internal/cli"

func main() {
	cli.Execute()
}
