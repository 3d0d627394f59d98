package app

import (
	"log/slog"
	"net/http"

	"bootbridge/internal/config"
	"bootbridge/internal/domain"
	"bootbridge/internal/metrics"
	"bootbridge/internal/services/credential"
	"bootbridge/internal/services/delivery"
	"bootbridge/internal/services/gate"
	"bootbridge/internal/services/handshake"
	"bootbridge/internal/services/hostendpoint"
	"bootbridge/internal/services/taskbridge"
)

// ServiceFactory builds the domain services from the runtime configuration.
type ServiceFactory struct {
	settings    *config.Config
	httpAdapter domain.HTTPAdapter
	recorder    *metrics.Metrics
	logger      *slog.Logger
}

// NewServiceFactory creates a new service factory.
func NewServiceFactory(
	settings *config.Config,
	httpAdapter domain.HTTPAdapter,
	recorder *metrics.Metrics,
	logger *slog.Logger,
) *ServiceFactory {
	return &ServiceFactory{
		settings:    settings,
		httpAdapter: httpAdapter,
		recorder:    recorder,
		logger:      logger,
	}
}

// Endpoints returns the configured identity provider endpoints.
func (f *ServiceFactory) Endpoints() credential.Endpoints {
	identity := f.settings.Identity
	return credential.Endpoints{
		LoginURL:  identity.LoginURL,
		TicketURL: identity.TicketURL,
		RedeemURL: identity.RedeemURL,
		Referer:   identity.Referer,
	}
}

// CreatePipeline creates a credential pipeline that hands outcomes to deliverer.
func (f *ServiceFactory) CreatePipeline(deliverer domain.CredentialDeliverer) *credential.Pipeline {
	client := handshake.NewClient(f.httpAdapter, f.recorder, f.logger)
	return credential.NewPipeline(client, deliverer, f.Endpoints(), f.logger)
}

// CreateGate creates a lifecycle gate in front of a new pipeline.
func (f *ServiceFactory) CreateGate(deliverer domain.CredentialDeliverer) *gate.Gate {
	return gate.New(f.CreatePipeline(deliverer), f.settings.Gate.TerminalMarker, f.logger)
}

// CreateNotifyingGate creates a lifecycle gate whose redemption outcomes are
// delivered in-process on the returned channel, which buffers up to buffer
// outcomes. An embedding host reads AuthCompleted notifications from it.
func (f *ServiceFactory) CreateNotifyingGate(buffer int) (*gate.Gate, <-chan *domain.RedemptionOutcome) {
	deliverer := delivery.NewChannelDeliverer(buffer)
	return f.CreateGate(deliverer), deliverer.Outcomes()
}

// CreateBridge creates a task bridge polling the configured host endpoint.
func (f *ServiceFactory) CreateBridge() *taskbridge.Bridge {
	source := taskbridge.NewHTTPSource(f.httpAdapter, f.settings.Bridge.Endpoint)
	return taskbridge.New(source, domain.TaskToken(f.settings.Bridge.StartingTask),
		taskbridge.WithInterval(f.settings.Bridge.PollInterval),
		taskbridge.WithLogger(f.logger),
		taskbridge.WithRecorder(f.recorder))
}

// CreateTaskBoard creates the host task board, counting task updates on the
// shared recorder.
func (f *ServiceFactory) CreateTaskBoard(initial domain.TaskToken) *hostendpoint.TaskBoard {
	return hostendpoint.NewTaskBoard(initial, f.logger, f.recorder)
}

// CreateHostServer creates the host task endpoint serving board.
func (f *ServiceFactory) CreateHostServer(board *hostendpoint.TaskBoard) *hostendpoint.Server {
	var metricsHandler http.Handler
	if f.settings.Host.Metrics {
		metricsHandler = f.recorder.Handler()
	}
	return hostendpoint.NewServer(board, f.recorder, metricsHandler, f.logger)
}
