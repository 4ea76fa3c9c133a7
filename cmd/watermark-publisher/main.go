package main

import "github.com/oshokin/watermark-tool/cmd/watermark-publisher/cmd"

func main() {
	cmd.Execute()
}
