package main

import "github.com/oshokin/watermark-tool/cmd/watermark-doctor/cmd"

func main() {
	cmd.Execute()
}
