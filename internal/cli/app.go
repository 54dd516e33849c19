package cli

import (
	"github.com/studyshelf/studyshelf/internal/api"
	"github.com/studyshelf/studyshelf/internal/config"
	"github.com/studyshelf/studyshelf/internal/db"
	"github.com/studyshelf/studyshelf/internal/entitlement"
	"github.com/studyshelf/studyshelf/internal/logger"
	"github.com/studyshelf/studyshelf/internal/orders"
	"github.com/studyshelf/studyshelf/internal/session"
	"github.com/studyshelf/studyshelf/internal/store"
)

// App bundles the wired-up client components for a command.
type App struct {
	Config    *config.Config
	Client    *api.Client
	DB        *db.DB
	Session   *session.Store
	Ents      *entitlement.Cache
	Store     *store.Store
	Refresher *orders.Refresher
}

// newApp wires the client stack: config, API client, local database,
// session store, entitlement cache, the shared app store, and the
// background order refresher.
func newApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	client := api.NewClient(cfg.ServerURL)

	database, err := db.OpenDefault()
	if err != nil {
		return nil, err
	}

	ents, err := entitlement.NewCache(database)
	if err != nil {
		database.Close()
		return nil, err
	}

	sessPath, err := session.DefaultPath()
	if err != nil {
		database.Close()
		return nil, err
	}
	sess := session.NewStore(client, sessPath)

	appStore := store.New(sess, ents, client)
	refresher := orders.NewRefresher(client, sess, ents)

	return &App{
		Config:    cfg,
		Client:    client,
		DB:        database,
		Session:   sess,
		Ents:      ents,
		Store:     appStore,
		Refresher: refresher,
	}, nil
}

// Close releases the app's resources.
func (a *App) Close() {
	if a.Refresher != nil {
		a.Refresher.Stop()
	}
	if a.DB != nil {
		_ = a.DB.Close()
		logger.Info("Database closed")
	}
}
