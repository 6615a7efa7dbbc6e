package main

import "github.com/KostasZigo/vx/cmd"

func main() {
	cmd.Execute()
}
