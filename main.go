package main

import "github.com/agentic-research/edb/cmd"

func main() {
	cmd.Execute()
}
