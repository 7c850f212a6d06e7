package main

import "github.com/HaiFongPan/minas-cli/cmd"

func main() {
	cmd.Execute()
}
