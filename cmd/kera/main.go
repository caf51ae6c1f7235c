package main

import (
	"martianoff/kera/cmd/kera/commands"
)

func main() {
	commands.Execute()
}
