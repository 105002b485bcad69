package main

import "github.com/Beastly713/bpcs/cmd"

func main() {
	cmd.Execute()
}
