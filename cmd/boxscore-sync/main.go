package main

import "github.com/pfrederiksen/boxscore-sync/internal/cli"

func main() {
	cli.Execute()
}
