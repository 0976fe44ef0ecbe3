package main

import "github.com/diffsec/codesearchd/cmd"

func main() {
	cmd.Execute()
}
