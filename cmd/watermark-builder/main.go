package main

import "github.com/oshokin/watermark-tool/cmd/watermark-builder/cmd"

func main() {
	cmd.Execute()
}
