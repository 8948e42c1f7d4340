package main

import "github.com/netforge-io/netforge/internal/cli"

func main() {
	cli.Execute()
}
