package main

import "github.com/Parumezan/toxidoc/internal/cli"

func main() {
	cli.Execute()
}
