package main

import "github.com/sightbox/sightbox/cmd/sightbox/commands"

func main() {
	commands.Execute()
}
