package main

import "github.com/mateusmacedo/go-schedule/internal/cli"

func main() {
	cli.Execute()
}
