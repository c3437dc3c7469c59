package main

import "github.com/dyike/StockInsights/internal/cli"

func main() {
	cli.Run()
}
