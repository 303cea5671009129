package main

import "github.com/theirongolddev/xercost/cmd"

func main() {
	cmd.Execute()
}
