package di

import (
	"go.uber.org/zap"

	"pollboard/application/commands/bus"
	"pollboard/application/ports"
	querybus "pollboard/application/queries/bus"
	"pollboard/infrastructure/config"
	"pollboard/interfaces/http/rest"
	"pollboard/pkg/auth"
	"pollboard/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	PollRepo     ports.PollRepository
	BookmarkRepo ports.BookmarkRepository
	EventBus     ports.EventPublisher
	Cache        ports.Cache
	CommandBus   *bus.CommandBus
	QueryBus     *querybus.QueryBus
	JWTValidator *auth.JWTValidator
	Metrics      *observability.Metrics
	Router       *rest.Router
}
