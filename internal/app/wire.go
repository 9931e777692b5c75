//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"github.com/romitgit/tc-project-service/internal/infra/config"
)

// InitializeApp creates the application using Wire.
func InitializeApp(cfg *config.Config) (*App, error) {
	wire.Build(AppSet)
	return nil, nil
}
