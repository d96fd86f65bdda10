package main

import "github.com/BradenHooton/vigil/internal/cli"

func main() {
	cli.Execute()
}
