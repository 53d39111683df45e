package main

import "github.com/example/bistrobook/cmd"

func main() {
	cmd.Execute()
}
