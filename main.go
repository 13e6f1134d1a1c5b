package main

import "github.com/jetstack/dsc-keys/cmd"

func main() {
	cmd.Execute()
}
