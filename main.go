package main

import "github.com/juststeveking/lookout/cmd"

func main() {
	cmd.Execute()
}
