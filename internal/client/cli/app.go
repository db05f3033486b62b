package cli

import (
	"bufio"
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/dkrasnov/flashread/internal/client/config"
	"github.com/dkrasnov/flashread/internal/client/recovery"
	"github.com/dkrasnov/flashread/internal/client/remote"
	"github.com/dkrasnov/flashread/internal/client/services"
	"github.com/dkrasnov/flashread/internal/client/store"
	"github.com/dkrasnov/flashread/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config       *config.Config
	store        *store.Store
	remote       remote.Client
	syncService  services.SyncService
	statsService services.StatsService
	crashBuffer  *recovery.Buffer
	logger       logging.Logger
	userName     string
	reader       *bufio.Reader
}

func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	ctx := context.Background()

	st, err := store.Open(ctx, c.DatabasePath)
	if err != nil {
		// A broken database degrades to ephemeral reading, not a crash.
		log.Printf("error initializing database, continuing without persistence: %s", err.Error())
		st = nil
	}

	var rc remote.Client
	if c.ServerEndpointAddr != "" {
		rc = remote.NewHTTPClient(c.ServerEndpointAddr, c.RequestTimeout)
	} else {
		rc = remote.NewNullClient()
	}

	ss := services.NewSyncService(st, rc, logger)
	ts := services.NewStatsService(st, rc, logger)
	buffer := recovery.NewBuffer(filepath.Join(filepath.Dir(c.DatabasePath), "recovery.json"))

	return &App{
		config:       c,
		store:        st,
		remote:       rc,
		syncService:  ss,
		statsService: ts,
		crashBuffer:  buffer,
		logger:       logger,
		reader:       bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer func() {
		_ = a.store.Close()
	}()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.remote.SignedIn()
}
