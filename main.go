package main

import "github.com/akss-tools/namefix/cmd"

func main() {
	cmd.Execute()
}
