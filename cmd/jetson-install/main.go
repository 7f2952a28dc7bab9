package main

import (
	cmd "github.com/jetsonhacks/install-deep-stream/cmd/jetson-install/cmd"
)

func main() {
	cmd.Execute()
}
