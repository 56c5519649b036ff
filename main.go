package main

import "f1trackrenderer/cmd"

func main() {
	cmd.Execute()
}
