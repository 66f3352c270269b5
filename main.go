package main

import "github.com/KaramelBytes/retailboard/cmd"

func main() {
	cmd.Execute()
}
