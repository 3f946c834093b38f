package main

import "github.com/kis-lang/kis/cmd"

var version = "v0.3.0"

func main() {
	cmd.Execute(version)
}
