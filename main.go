package main

import "github.com/jcdickinson/refdocs/cmd"

func main() {
	cmd.Execute()
}
