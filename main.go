package main

import "github.com/stackgen-cli/batectify/cmd"

func main() {
	cmd.Execute()
}
