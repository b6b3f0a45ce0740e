package main

import "github.com/sw33tLie/biliguard/cmd"

func main() {
	cmd.Execute()
}
