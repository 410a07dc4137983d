// Package logging constructs the single *zap.Logger threaded through
// the CLI and the simulation driver.
package logging

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// New builds a production (JSON) logger by default, or a development
// (human-readable) one when verbose is true.
func New(verbose bool) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, errors.Wrap(err, "logging: building logger")
	}
	return logger, nil
}
