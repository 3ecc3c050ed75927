package xlog

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

func TestFxXLogger_LogEvent(t *testing.T) {
	var nilLogger *FxXLogger
	require.NotPanics(t, func() {
		nilLogger.LogEvent(&fxevent.Started{})
		NewFxXLogger(nil).LogEvent(&fxevent.Started{})
	})

	w := &testMemOutWriter{}
	logger := NewFxXLogger(newTestLogger(w))
	errBoom := errors.New("boom")
	events := []fxevent.Event{
		&fxevent.OnStartExecuting{FunctionName: "start", CallerName: "main"},
		&fxevent.OnStartExecuted{FunctionName: "start", CallerName: "main", Runtime: time.Millisecond},
		&fxevent.OnStopExecuted{FunctionName: "stop", CallerName: "main", Err: errBoom},
		&fxevent.Provided{ConstructorName: "newTree", OutputTypeNames: []string{"tree.Tree[int]"}},
		&fxevent.Invoked{FunctionName: "run"},
		&fxevent.Stopping{Signal: os.Interrupt},
		&fxevent.Started{},
	}
	for _, e := range events {
		logger.LogEvent(e)
	}

	lines := w.lines(t)
	require.Len(t, lines, 6)
	for _, line := range lines {
		require.Equal(t, "fx", line["component"])
	}
	require.Equal(t, "hook OnStart executing", lines[0]["msg"])
	require.Equal(t, "hook OnStart executed", lines[1]["msg"])
	require.Equal(t, "hook OnStop failed", lines[2]["msg"])
	require.Equal(t, "boom", lines[2]["error"])
	require.Equal(t, "tree.Tree[int]", lines[3]["rtype"])
	require.Equal(t, "stopping", lines[4]["msg"])
	require.Equal(t, "running", lines[5]["msg"])
}

func TestFxXLogger_App(t *testing.T) {
	w := &testMemOutWriter{}
	parent := newTestLogger(w)
	invoked := false
	app := fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return NewFxXLogger(parent)
		}),
		fx.Supply(42),
		fx.Invoke(func(n int) {
			invoked = n == 42
		}),
	)
	require.NoError(t, app.Err())
	require.True(t, invoked)
	require.NotEmpty(t, w.lines(t))
}
