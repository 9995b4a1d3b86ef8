package main

import "github.com/fastygo/powertimer/internal/cli"

func main() {
	cli.Execute()
}
