package main

import (
	"GPUTune/internal/gputune"
	"GPUTune/internal/util"
)

func main() {
	util.InitLogger("info")
	gputune.ParseCmdArgs()
}
