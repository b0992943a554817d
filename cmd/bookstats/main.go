package main

import "github.com/jasperwreed/bookstats/internal/cli"

func main() {
	cli.Execute()
}
