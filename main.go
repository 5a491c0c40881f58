package main

import "rentaflow/cmd"

func main() {
	cmd.Execute()
}
