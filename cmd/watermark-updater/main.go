package main

import "github.com/oshokin/watermark-tool/cmd/watermark-updater/cmd"

func main() {
	cmd.Execute()
}
