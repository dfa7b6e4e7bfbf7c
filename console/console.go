// Package console assembles the account manager: a typed client over the
// accounts API, an observable view-state store, and the services that drive
// listing, editing, connections, bulk operations, uploads and registration
// links. Hosts embed one Console per operator session.
package console

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/client"
	"github.com/noah-isme/sma-adp-console/pkg/cache"
	"github.com/noah-isme/sma-adp-console/pkg/config"
	appLogger "github.com/noah-isme/sma-adp-console/pkg/logger"
	"github.com/noah-isme/sma-adp-console/pkg/storage"
	"github.com/noah-isme/sma-adp-console/pkg/transport"
	"github.com/noah-isme/sma-adp-console/pkg/workers"
	"github.com/noah-isme/sma-adp-console/state"
)

// Console is the embedding surface for the account manager.
type Console struct {
	cfg    *config.Config
	logger *zap.Logger

	store   *state.Store
	msgs    *MessageCenter
	metrics *MetricsService
	audit   *AuditService

	session      *SessionService
	directory    *DirectoryService
	accounts     *AccountService
	connections  *ConnectionService
	groups       *GroupService
	bulk         *BulkService
	uploads      *UploadService
	registration *RegistrationService
	tracker      *Tracker
}

// New wires a console against the configured accounts API. It performs no
// network I/O; Boot runs the startup probes. A nil logger is replaced by one
// built from cfg.Log.
func New(cfg *config.Config, logger *zap.Logger) (*Console, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		built, err := appLogger.New(cfg)
		if err != nil {
			return nil, err
		}
		logger = built
	}

	metrics := NewMetricsService()
	msgs := NewMessageCenter(0)
	store := state.New(cfg.Listing.PageSize)
	audit := NewAuditService(cfg.UserEmail, 0, logger)

	api, err := client.New(client.Config{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.HTTPTimeout,
		UserEmail: cfg.UserEmail,
		UserID:    cfg.UserID,
		Transport: transport.New(http.DefaultTransport, logger, metrics),
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	exports, err := storage.NewExportDir(cfg.Exports.Dir)
	if err != nil {
		return nil, err
	}

	lookups := NewCacheService(cache.NewStore(), metrics, cfg.Listing.LookupCacheTTL, logger)

	directory := NewDirectoryService(api, store, msgs, audit, exports, cfg.Listing.SearchDebounce, logger)
	tracker := NewTracker(api, store, msgs, metrics, directory, TrackerConfig{
		PollInterval: cfg.Jobs.PollInterval,
		MaxAge:       cfg.Jobs.MaxAge,
		FailureLimit: cfg.Jobs.FailureLimit,
	}, logger)

	accounts := NewAccountService(api, store, msgs, audit, directory, logger)
	connections := NewConnectionService(api, store, msgs, audit, lookups, logger)
	groups := NewGroupService(api, store, msgs, audit, lookups, logger)

	pool := workers.NewPool(workers.Config{
		Workers: cfg.Bulk.Workers,
		Pace:    cfg.Bulk.Pace,
		Logger:  logger,
	})
	bulk := NewBulkService(api, store, msgs, audit, tracker, exports, pool, BulkConfig{
		BackupsEnabled: cfg.Exports.BackupsEnabled,
		UserEmail:      cfg.UserEmail,
	}, logger)

	uploads := NewUploadService(api, store, msgs, audit, tracker, metrics, validator.New(), UploadConfig{
		UserID:            cfg.UserID,
		UserEmail:         cfg.UserEmail,
		Percentile:        cfg.Upload.Percentile,
		SendNotifications: cfg.Upload.SendNotifications,
		NotificationEmail: cfg.Upload.NotificationEmail,
	}, logger)

	registration := NewRegistrationService(api, store, msgs, audit, exports, cfg.UserEmail, logger)
	session := NewSessionService(api, store, msgs, lookups, directory, groups, logger)

	return &Console{
		cfg:          cfg,
		logger:       logger,
		store:        store,
		msgs:         msgs,
		metrics:      metrics,
		audit:        audit,
		session:      session,
		directory:    directory,
		accounts:     accounts,
		connections:  connections,
		groups:       groups,
		bulk:         bulk,
		uploads:      uploads,
		registration: registration,
		tracker:      tracker,
	}, nil
}

// Boot runs the startup sequence: the auth probe, the school picker for
// super users, group preload, and the first listing page. The probe failing
// does not abort boot.
func (c *Console) Boot(ctx context.Context) error {
	c.session.Check(ctx)
	if c.store.Snapshot().Session.SuperUser {
		if err := c.session.LoadSchools(ctx); err != nil {
			c.logger.Warn("school list unavailable", zap.Error(err))
		}
	}
	c.groups.Preload(ctx)
	return c.directory.Load(ctx)
}

// Close stops the background tasks. Registered jobs resume tracking on the
// next Register if the console is reused.
func (c *Console) Close() {
	c.directory.stopDebounce()
	c.tracker.Stop()
	c.msgs.stop()
}

// State returns the current view-state snapshot.
func (c *Console) State() state.State { return c.store.Snapshot() }

// Store exposes the underlying store for subscription.
func (c *Console) Store() *state.Store { return c.store }

// Messages exposes the status banner.
func (c *Console) Messages() *MessageCenter { return c.msgs }

// Session exposes identity and school-context operations.
func (c *Console) Session() *SessionService { return c.session }

// Directory exposes listing, filtering, search and export operations.
func (c *Console) Directory() *DirectoryService { return c.directory }

// Accounts exposes single-account edit and action operations.
func (c *Console) Accounts() *AccountService { return c.accounts }

// Connections exposes the staff-student connection editor.
func (c *Console) Connections() *ConnectionService { return c.connections }

// Groups exposes the school group catalogue.
func (c *Console) Groups() *GroupService { return c.groups }

// Bulk exposes operations over the current selection.
func (c *Console) Bulk() *BulkService { return c.bulk }

// Uploads exposes the onboarding ingestion pipeline.
func (c *Console) Uploads() *UploadService { return c.uploads }

// Registration exposes self-registration links, QR codes and posters.
func (c *Console) Registration() *RegistrationService { return c.registration }

// Jobs exposes the background job tracker.
func (c *Console) Jobs() *Tracker { return c.tracker }

// Metrics exposes the console's Prometheus instruments.
func (c *Console) Metrics() *MetricsService { return c.metrics }

// MetricsHandler returns an http.Handler serving the metrics registry, for
// hosts that expose a scrape endpoint.
func (c *Console) MetricsHandler() http.Handler { return c.metrics.Handler() }

// Audit exposes the recorded operation trail.
func (c *Console) Audit() *AuditService { return c.audit }
