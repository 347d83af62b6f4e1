package main

import "picam-cli/cmd"

func main() {
	cmd.Execute()
}
