// Package modulecard is the reusable "run this step, show a spinner, render
// the result" unit of the dashboard.
package modulecard

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/paperiq/dashboard/internal/models"
	"go.uber.org/zap"
)

// Card is one pipeline step's widget. The only state it owns is whether an
// invocation is in flight.
type Card struct {
	Step        models.Step
	Title       string
	Description string
	Color       string

	inFlight atomic.Int32
	logger   *zap.Logger
}

// New creates a card.
func New(step models.Step, title, description, color string, logger *zap.Logger) *Card {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Card{Step: step, Title: title, Description: description, Color: color, logger: logger}
}

// Processing reports whether any invocation is still running.
func (c *Card) Processing() bool {
	return c.inFlight.Load() > 0
}

// Run marks the card busy, runs action and clears the mark however action
// ends. Overlapping runs are allowed; the card stays busy until the last one
// returns.
func (c *Card) Run(ctx context.Context, action func(context.Context) error) (err error) {
	c.inFlight.Add(1)
	defer c.inFlight.Add(-1)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", c.Title, r)
		}
		if err != nil {
			c.logger.Error("error processing module", zap.String("module", c.Title), zap.Error(err))
		}
	}()

	return action(ctx)
}
