package main

import (
	"fmt"
	"io"
	"time"

	"github.com/Geinome/dsharp/internal/backend"
)

func printStageTimings(out io.Writer, timings backend.Timings) {
	if out == nil {
		return
	}
	stages := []struct {
		stage backend.Stage
		label string
	}{
		{backend.StageOrder, "ordered"},
		{backend.StageRename, "renamed"},
		{backend.StageAssemble, "assembled"},
		{backend.StagePackage, "packaged"},
		{backend.StageWrite, "wrote"},
	}
	for _, s := range stages {
		if !timings.Has(s.stage) {
			continue
		}
		fmt.Fprintf(out, "%s %.1f ms\n", s.label, toMillis(timings.Duration(s.stage)))
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
