package main

import "liveRiskSizer/cli"

func main() {
	cli.Execute()
}
