package main

import "github.com/julienpequegnot/openqa/cmd"

func main() {
	cmd.Execute()
}
