package main

import "github.com/AvaProtocol/gasless-vote/cmd"

func main() {
	cmd.Execute()
}
