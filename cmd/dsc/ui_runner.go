package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Geinome/dsharp/internal/backend"
	"github.com/Geinome/dsharp/internal/ui"
)

type buildOutcome struct {
	results []backend.BuildResult
	err     error
}

func runBuildAllWithUI(ctx context.Context, title string, units []string, reqs []*backend.BuildRequest) ([]backend.BuildResult, error) {
	events := make(chan backend.Event, 256)
	outcomeCh := make(chan buildOutcome, 1)

	go func() {
		reqCopies := make([]*backend.BuildRequest, len(reqs))
		for i, req := range reqs {
			reqCopy := *req
			reqCopy.Progress = backend.ChannelSink{Ch: events}
			reqCopies[i] = &reqCopy
		}
		results, err := backend.BuildAll(ctx, reqCopies)
		outcomeCh <- buildOutcome{results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, units, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
