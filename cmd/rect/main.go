package main

import "rect/cmd/rect/cmd"

func main() {
	cmd.Execute()
}
