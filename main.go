package main

import "github.com/crystaldolphin/conversebank/cmd"

func main() {
	cmd.Execute()
}
