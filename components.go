package main

import (
	"time"

	"go.uber.org/zap"
)

// Func is a benchmark target. Its result is discarded by the runner.
type Func func(data string) any

type Namespace interface {
	Name() string
	Names() []string
	Bind(name string, logger *zap.SugaredLogger) (Func, bool)
}

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

var SystemClock Clock = systemClock{}
