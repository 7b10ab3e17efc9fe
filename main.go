package main

import "github.com/naka-gawa/game-center/cmd"

func main() {
	cmd.Execute()
}
