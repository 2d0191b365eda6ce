//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"brain2-conceptmap/internal/config"
)

// InitializeApp builds the service from cfg. The cleanup closes the session
// and flushes the logger.
func InitializeApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil
}
