package main

import (
	"vesrates/internal/cli"
)

func main() {
	cli.Execute()
}
