package main

import "github.com/tomoyasu-sasaki/SmartNippo-sub000/cmd"

func main() {
	cmd.Execute()
}
