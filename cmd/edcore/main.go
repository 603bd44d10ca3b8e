package main

import "github.com/cmdrlink/edcore/internal/adapters/cli"

func main() {
	cli.Execute()
}
