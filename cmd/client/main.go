// Package main is the registro client entry point.
package main

import "github.com/ponto-app/registro/internal/cli"

func main() {
	cli.Execute()
}
