package main

import "github.com/oshokin/watermark-tool/cmd/watermark-server/cmd"

func main() {
	cmd.Execute()
}
