package main

import "github.com/example/camp-scheduler/cmd"

func main() {
	cmd.Execute()
}
