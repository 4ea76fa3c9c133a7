package main

import "github.com/oshokin/watermark-tool/cmd/watermark-stamper/cmd"

func main() {
	cmd.Execute()
}
