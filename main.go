package main

import "github.com/beka-birhanu/vinom-drift/cmd"

func main() {
	cmd.Execute()
}
