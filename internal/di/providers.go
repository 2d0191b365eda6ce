package di

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	awsDynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsEventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/google/wire"
	"go.uber.org/zap"

	"brain2-conceptmap/internal/config"
	apperrors "brain2-conceptmap/internal/errors"
	"brain2-conceptmap/internal/infrastructure/decorators"
	"brain2-conceptmap/internal/infrastructure/events"
	"brain2-conceptmap/internal/infrastructure/observability"
	"brain2-conceptmap/internal/interfaces/http/rest"
	"brain2-conceptmap/internal/repository"
	"brain2-conceptmap/internal/repository/ddb"
	"brain2-conceptmap/internal/repository/file"
	"brain2-conceptmap/internal/repository/memory"
	"brain2-conceptmap/internal/service/conceptmap"
	"brain2-conceptmap/internal/service/connections"
	"brain2-conceptmap/internal/service/llm"
	"brain2-conceptmap/pkg/auth"
)

const serviceName = "brain2-conceptmap"

// InfrastructureProviders build clients, storage and observability.
var InfrastructureProviders = wire.NewSet(
	provideLogger,
	provideMetrics,
	provideAWSConfig,
	provideDynamoDBClient,
	provideEventBridgeClient,
	provideRawNoteSource,
	provideNoteSource,
	provideWatchable,
	providePublisher,
)

// ServiceProviders build the suggester chain and the session.
var ServiceProviders = wire.NewSet(
	provideSuggester,
	provideLoader,
	wire.Bind(new(conceptmap.Sweeper), new(*connections.Loader)),
	provideSession,
)

// InterfaceProviders build the HTTP surface.
var InterfaceProviders = wire.NewSet(
	provideJWTValidator,
	provideHandler,
	provideRouter,
)

// SuperSet is everything InitializeApp needs.
var SuperSet = wire.NewSet(
	InfrastructureProviders,
	ServiceProviders,
	InterfaceProviders,
	wire.Struct(new(App), "*"),
)

func provideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	logger, err := apperrors.NewLogger(string(cfg.Environment), cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	logger = logger.With(zap.String("service", serviceName), zap.String("version", cfg.Version))
	return logger, func() { _ = logger.Sync() }, nil
}

// provideMetrics returns nil when metrics are disabled; every consumer
// accepts a nil collector.
func provideMetrics(cfg *config.Config) *observability.Collector {
	if !cfg.Observability.EnableMetrics {
		return nil
	}
	return observability.NewCollector("conceptmap")
}

func provideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	awsCfg, err := awsConfig.LoadDefaultConfig(loadCtx, awsConfig.WithRegion(cfg.Notes.Region))
	if err != nil {
		return aws.Config{}, apperrors.NewInternal("load AWS config", err)
	}
	return awsCfg, nil
}

func provideDynamoDBClient(awsCfg aws.Config, cfg *config.Config) *awsDynamodb.Client {
	return awsDynamodb.NewFromConfig(awsCfg, func(o *awsDynamodb.Options) {
		timeout := 15 * time.Second
		if cfg.Environment == config.Development {
			timeout = 30 * time.Second
		}
		o.HTTPClient = &http.Client{Timeout: timeout}
		if cfg.Notes.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Notes.Endpoint)
		}
	})
}

func provideEventBridgeClient(awsCfg aws.Config) *awsEventbridge.Client {
	return awsEventbridge.NewFromConfig(awsCfg, func(o *awsEventbridge.Options) {
		o.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	})
}

func provideRawNoteSource(cfg *config.Config, client *awsDynamodb.Client, logger *zap.Logger) (repository.NoteSource, error) {
	switch cfg.Notes.Source {
	case config.SourceMemory:
		return memory.NewStore(), nil
	case config.SourceFile:
		return file.NewSource(cfg.Notes.Path, logger), nil
	case config.SourceDynamoDB:
		return ddb.NewNoteRepository(client, cfg.Notes.TableName, cfg.Notes.UserID, logger), nil
	default:
		return nil, apperrors.NewValidation(fmt.Sprintf("unknown note source %q", cfg.Notes.Source)).
			WithCode(apperrors.CodeInvalidConfig)
	}
}

// noteSource is the instrumented source handed to the session. It is a
// distinct type so wire can tell it from the raw source.
type noteSource struct {
	repository.NoteSource
}

func provideNoteSource(raw repository.NoteSource, logger *zap.Logger, metrics *observability.Collector) noteSource {
	return noteSource{decorators.Instrument(raw, logger, metrics)}
}

func provideWatchable(raw repository.NoteSource) repository.Watchable {
	if w, ok := raw.(repository.Watchable); ok {
		return w
	}
	return nil
}

func providePublisher(cfg *config.Config, client *awsEventbridge.Client, logger *zap.Logger) events.Publisher {
	switch {
	case cfg.Events.EventBusName != "":
		return events.NewEventBridgePublisher(client, cfg.Events.EventBusName, cfg.Events.Source)
	case cfg.Environment == config.Development:
		return events.NewLoggingPublisher(logger)
	default:
		return events.NoopPublisher{}
	}
}

func provideSuggester(cfg *config.Config, logger *zap.Logger) connections.Suggester {
	var provider llm.Provider
	switch cfg.LLM.Provider {
	case config.ProviderOpenAI:
		provider = llm.NewOpenAIProvider(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL, logger)
	default:
		provider = llm.NewMockProvider()
	}

	service := llm.NewService(provider, cfg.LLM.Timeout, logger)
	return llm.NewBreakerSuggester(service, llm.BreakerConfig{
		Name:         "llm-" + cfg.LLM.Provider,
		MaxRequests:  cfg.Breaker.MaxRequests,
		Interval:     cfg.Breaker.Interval,
		Timeout:      cfg.Breaker.Timeout,
		FailureRatio: cfg.Breaker.FailureRatio,
		MinRequests:  cfg.Breaker.MinRequests,
	}, logger)
}

func provideLoader(suggester connections.Suggester, logger *zap.Logger, metrics *observability.Collector) *connections.Loader {
	return connections.NewLoader(suggester, logger, metrics)
}

func provideSession(
	cfg *config.Config,
	source noteSource,
	sweeper conceptmap.Sweeper,
	publisher events.Publisher,
	metrics *observability.Collector,
	logger *zap.Logger,
) (*conceptmap.Session, func()) {
	session := conceptmap.NewSession(source.NoteSource, sweeper, publisher, metrics,
		cfg.LayoutConfig(), cfg.ViewSettings(), logger)
	return session, session.Close
}

func provideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	if !cfg.Auth.Enabled() {
		return nil, nil
	}
	v, err := auth.NewJWTValidator(auth.JWTConfig{
		SigningMethod: cfg.Auth.SigningMethod(),
		SecretKey:     cfg.Auth.JWTSecret,
		PublicKey:     cfg.Auth.JWTPublicKey,
		Issuer:        cfg.Auth.Issuer,
		Audience:      cfg.Auth.Audience,
	})
	if err != nil {
		return nil, apperrors.NewValidation(err.Error()).WithCode(apperrors.CodeInvalidConfig)
	}
	return v, nil
}

func provideHandler(session *conceptmap.Session, logger *zap.Logger) *rest.ConceptMapHandler {
	return rest.NewConceptMapHandler(session, logger)
}

func provideRouter(
	cfg *config.Config,
	handler *rest.ConceptMapHandler,
	metrics *observability.Collector,
	validator *auth.JWTValidator,
	logger *zap.Logger,
) http.Handler {
	return rest.NewRouter(handler, metrics, validator, logger, rest.RouterConfig{
		ServiceName:    serviceName,
		Version:        cfg.Version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		EnableTracing:  cfg.Observability.EnableTracing,
		RequestTimeout: cfg.Server.WriteTimeout,
	}).Setup()
}
