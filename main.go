package main

import "pos-backend/cmd"

func main() {
	cmd.Execute()
}
