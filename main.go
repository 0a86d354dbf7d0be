// main is the entry point for the footprint CLI.
package main

import (
	"github.com/huangsam/footprint/cmd"
	"github.com/huangsam/footprint/internal/contract"
	"github.com/huangsam/footprint/internal/iocache"
)

func main() {
	err := cmd.Execute()

	// Deferred work must run before LogFatal exits the process.
	iocache.CloseStores()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Cannot stop profiling", stopErr)
	}
	if metricsErr := cmd.WriteMetrics(); metricsErr != nil {
		contract.LogWarn("Cannot write metrics", metricsErr)
	}

	if err != nil {
		contract.LogFatal("footprint failed", err)
	}
}
