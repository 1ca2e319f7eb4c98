package main

import (
	"github.com/DedS3t/monopoly-engine/cmd"
	"github.com/DedS3t/monopoly-engine/platform/logging"
)

func main() {
	logging.Init()
	cmd.Execute()
}
