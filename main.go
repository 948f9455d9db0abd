package main

import "github.com/partman-wizard/partman-wizard/cmd"

func main() {
	cmd.Execute()
}
