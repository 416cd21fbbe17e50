package main

import cmd "github.com/rohmanhakim/newsfeed/internal/cli"

func main() {
	cmd.Execute()
}
