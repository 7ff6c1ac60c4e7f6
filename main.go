package main

import "vibin_match/cmd"

func main() {
	cmd.Execute()
}
