package main

import "github.com/boneshq/bones/cmd"

func main() {
	cmd.Execute()
}
