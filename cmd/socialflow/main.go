package main

import "github.com/socialflow/socialflow/cmd/socialflow/cmd"

func main() {
	cmd.Execute()
}
