package main

import "github.com/maxvaer/webenum/cmd"

func main() {
	cmd.Execute()
}
