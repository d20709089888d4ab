package jdeps

import (
	"context"
	"io"
)

// MockExecutor is a mock implementation of Executor for testing
type MockExecutor struct {
	MockStdout string
	MockStderr string
	MockError  error

	// Args records the arguments of every call
	Args [][]string
}

func (m *MockExecutor) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	m.Args = append(m.Args, args)

	if _, err := io.WriteString(stdout, m.MockStdout); err != nil {
		return err
	}
	if _, err := io.WriteString(stderr, m.MockStderr); err != nil {
		return err
	}
	return m.MockError
}
