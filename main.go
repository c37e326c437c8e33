package main

import "github.com/shouni/go-job-exact/cmd"

func main() {
	cmd.Execute()
}
