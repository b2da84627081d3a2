package startup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Dependency is a named unit of the service lifecycle (database, broker,
// http server). Dependencies start in declaration order, honoring DependsOn,
// and stop in reverse.
type Dependency interface {
	GetName() string
	DependsOn() []string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type funcDependency struct {
	name      string
	dependsOn []string
	start     func(ctx context.Context) error
	stop      func(ctx context.Context) error
}

func (d *funcDependency) GetName() string     { return d.name }
func (d *funcDependency) DependsOn() []string { return d.dependsOn }

func (d *funcDependency) Start(ctx context.Context) error {
	if d.start == nil {
		return nil
	}
	return d.start(ctx)
}

func (d *funcDependency) Stop(ctx context.Context) error {
	if d.stop == nil {
		return nil
	}
	return d.stop(ctx)
}

// NewDependency builds a Dependency from start/stop functions.
func NewDependency(name string, dependsOn []string, start, stop func(ctx context.Context) error) Dependency {
	return &funcDependency{name: name, dependsOn: dependsOn, start: start, stop: stop}
}

type status int

const (
	statusPending status = iota
	statusStarted
	statusStopped
	statusFailed
)

type Startup struct {
	order        []string
	dependencies map[string]Dependency
	statuses     map[string]status
	logger       *zap.Logger
	maxAttempts  int
}

func New(logger *zap.Logger, maxAttempts int) *Startup {
	return &Startup{
		logger:       logger,
		dependencies: make(map[string]Dependency),
		statuses:     make(map[string]status),
		maxAttempts:  maxAttempts,
	}
}

func (s *Startup) AddDependency(dependency Dependency) {
	if _, ok := s.dependencies[dependency.GetName()]; !ok {
		s.order = append(s.order, dependency.GetName())
	}
	s.dependencies[dependency.GetName()] = dependency
}

// Start brings every dependency up, retrying the whole sequence with
// Fibonacci backoff until maxAttempts is exhausted.
func (s *Startup) Start(ctx context.Context) error {
	var lastErr error

	a, b := 1, 1
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		s.logger.Info("beginning startup attempt", zap.Int("attempt", attempt))

		success := true
		for _, name := range s.order {
			if err := s.startDependency(ctx, s.dependencies[name]); err != nil {
				s.logger.Error("startup dependency failed",
					zap.String("dependency", name), zap.Int("attempt", attempt), zap.Error(err))
				lastErr = err
				success = false
				break
			}
		}

		if success {
			return nil
		}
		if attempt == s.maxAttempts {
			break
		}

		wait := time.Duration(a) * time.Second
		s.logger.Info("retrying startup", zap.Duration("wait", wait), zap.Int("attempt", attempt))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		a, b = b, a+b
	}

	return fmt.Errorf("startup failed after %d attempts: %w", s.maxAttempts, lastErr)
}

func (s *Startup) startDependency(ctx context.Context, dependency Dependency) error {
	if s.statuses[dependency.GetName()] == statusStarted {
		return nil
	}

	for _, name := range dependency.DependsOn() {
		if s.statuses[name] != statusStarted {
			if err := s.startDependency(ctx, s.dependencies[name]); err != nil {
				return err
			}
		}
	}

	s.logger.Info("starting dependency", zap.String("dependency", dependency.GetName()))
	if err := dependency.Start(ctx); err != nil {
		s.statuses[dependency.GetName()] = statusFailed
		return err
	}
	s.statuses[dependency.GetName()] = statusStarted
	return nil
}

// Stop shuts down started dependencies in reverse start order.
func (s *Startup) Stop(ctx context.Context) error {
	for i := len(s.order) - 1; i >= 0; i-- {
		name := s.order[i]
		if s.statuses[name] != statusStarted {
			continue
		}
		s.logger.Info("stopping dependency", zap.String("dependency", name))
		if err := s.dependencies[name].Stop(ctx); err != nil {
			s.logger.Error("failed to stop dependency", zap.String("dependency", name), zap.Error(err))
			return err
		}
		s.statuses[name] = statusStopped
	}
	return nil
}
