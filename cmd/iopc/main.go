package main

import "github.com/intentlab-dev/iopc/pkg/cli"

func main() {
	cli.Execute()
}
