package main

import "github.com/j-wow-shop/app-listing-integrations-analysis/cmd/appint/commands"

func main() {
	commands.Execute()
}
