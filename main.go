package main

import "github.com/andrejsstepanovs/memberqr/cmd"

func main() {
	cmd.Execute()
}
