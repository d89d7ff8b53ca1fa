package di

import (
	"context"
	"fmt"

	"pollboard/application/commands"
	"pollboard/application/commands/bus"
	commands_handlers "pollboard/application/commands/handlers"
	"pollboard/application/ports"
	"pollboard/application/queries"
	querybus "pollboard/application/queries/bus"
	queries_handlers "pollboard/application/queries/handlers"
	"pollboard/domain/core/validators"
	"pollboard/infrastructure/cache"
	"pollboard/infrastructure/config"
	"pollboard/infrastructure/messaging/eventbridge"
	"pollboard/infrastructure/persistence/dynamodb"
	"pollboard/interfaces/http/rest"
	"pollboard/pkg/auth"
	"pollboard/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	return zapCfg.Build()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvidePollRepository creates a poll repository
func ProvidePollRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.PollRepository {
	return dynamodb.NewPollRepository(
		client,
		cfg.DynamoDBTable,
		cfg.AuthorIndex,
		logger,
	)
}

// ProvideBookmarkRepository creates a bookmark repository
func ProvideBookmarkRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.BookmarkRepository {
	return dynamodb.NewBookmarkRepository(
		client,
		cfg.BookmarksTable,
		cfg.BookmarkPollIndex,
		logger,
	)
}

// ProvideEventPublisher creates an event publisher. Local development runs
// without an event bus, so publishes become no-ops there.
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	if cfg.IsDevelopment() || cfg.EventBusName == "" {
		return eventbridge.NewNoopPublisher()
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideCache creates the poll snapshot cache. Redis is used when an address
// is configured; otherwise an in-process cache keeps single-instance setups working.
func ProvideCache(cfg *config.Config, logger *zap.Logger) (ports.Cache, error) {
	if cfg.RedisAddr != "" {
		return cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
	}
	return cache.NewMemoryCache(), nil
}

// ProvideMetrics creates metrics instance
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config) *observability.Metrics {
	if !cfg.EnableMetrics {
		return observability.NewMetrics("", nil)
	}
	namespace := fmt.Sprintf("Pollboard/%s", cfg.Environment)
	return observability.NewMetrics(namespace, client)
}

// ProvideJWTValidator creates the token validator used by the HTTP layer
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	secret := cfg.JWTSecret
	if secret == "" && cfg.IsDevelopment() {
		secret = "local-development-secret"
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: secret,
		Issuer:    cfg.JWTIssuer,
	})
}

// CommandHandlerAdapter adapts specific command handlers to the generic interface
type CommandHandlerAdapter struct {
	handler func(context.Context, bus.Command) error
}

func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd bus.Command) error {
	return a.handler(ctx, cmd)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	pollRepo ports.PollRepository,
	bookmarkRepo ports.BookmarkRepository,
	pollCache ports.Cache,
	eventPublisher ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *bus.CommandBus {
	commandBus := bus.NewCommandBus(
		bus.LoggingMiddleware(logger),
		bus.MetricsMiddleware(metrics),
	)

	createHandler := commands_handlers.NewCreatePollHandler(pollRepo, eventPublisher, validators.NewPollValidator(), logger)
	commandBus.Register(commands.CreatePollCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			createCmd, ok := cmd.(commands.CreatePollCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			_, err := createHandler.Handle(ctx, createCmd)
			return err
		},
	})

	castVoteHandler := commands_handlers.NewCastVoteHandler(pollRepo, pollCache, eventPublisher, logger)
	commandBus.Register(commands.CastVoteCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			voteCmd, ok := cmd.(commands.CastVoteCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return castVoteHandler.Handle(ctx, voteCmd)
		},
	})

	retractHandler := commands_handlers.NewRetractVoteHandler(pollRepo, pollCache, eventPublisher, logger)
	commandBus.Register(commands.RetractVoteCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			retractCmd, ok := cmd.(commands.RetractVoteCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return retractHandler.Handle(ctx, retractCmd)
		},
	})

	deleteHandler := commands_handlers.NewDeletePollHandler(pollRepo, bookmarkRepo, pollCache, eventPublisher, logger)
	commandBus.Register(commands.DeletePollCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			deleteCmd, ok := cmd.(commands.DeletePollCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return deleteHandler.Handle(ctx, deleteCmd)
		},
	})

	// Registered as a pointer so the handler can report the resulting
	// bookmark state back through the command.
	toggleHandler := commands_handlers.NewToggleBookmarkHandler(pollRepo, bookmarkRepo, eventPublisher, logger)
	commandBus.Register(&commands.ToggleBookmarkCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			toggleCmd, ok := cmd.(*commands.ToggleBookmarkCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return toggleHandler.Handle(ctx, toggleCmd)
		},
	})

	return commandBus
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	pollRepo ports.PollRepository,
	bookmarkRepo ports.BookmarkRepository,
	pollCache ports.Cache,
	cfg *config.Config,
	logger *zap.Logger,
) *querybus.QueryBus {
	queryBus := querybus.NewQueryBus(querybus.LoggingMiddleware(logger))

	getPollHandler := queries_handlers.NewGetPollHandler(pollRepo, bookmarkRepo, pollCache, cfg.PollCacheTTL, logger)
	queryBus.Register(queries.GetPollQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetPollQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return getPollHandler.Handle(ctx, getQuery)
		},
	})

	listPollsHandler := queries_handlers.NewListPollsHandler(pollRepo, bookmarkRepo, logger)
	queryBus.Register(queries.ListPollsQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			listQuery, ok := query.(queries.ListPollsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return listPollsHandler.Handle(ctx, listQuery)
		},
	})

	statsHandler := queries_handlers.NewDashboardStatsHandler(pollRepo, bookmarkRepo, logger)
	queryBus.Register(queries.DashboardStatsQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			statsQuery, ok := query.(queries.DashboardStatsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return statsHandler.Handle(ctx, statsQuery)
		},
	})

	return queryBus
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	validator *auth.JWTValidator,
	cfg *config.Config,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(commandBus, queryBus, validator, cfg.EnableCORS, logger)
}
