package main

import "git_batch_push/cmd"

func main() {
	cmd.Execute()
}
