package commands

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/genf/workreport/internal/config"
	"github.com/genf/workreport/pkg/cache"
	"github.com/genf/workreport/pkg/clients/gmailclient"
	"github.com/genf/workreport/pkg/clients/jobsapi"
	"github.com/genf/workreport/pkg/clients/sheetsclient"
	"github.com/genf/workreport/pkg/core/services"
	"github.com/genf/workreport/pkg/db"
	"github.com/genf/workreport/pkg/utils"
)

// AppContext holds the application dependencies shared across all commands.
// Google clients are created on first use so commands that only read the
// postgres warehouse never start the OAuth flow.
type AppContext struct {
	Cfg        *config.Config
	Database   db.Database
	JobsClient *jobsapi.Client
	Cache      cache.Cache
	Auth       *utils.Authenticator
	Logger     *zap.Logger
	Ctx        context.Context

	mu           sync.Mutex
	sheetsClient *sheetsclient.Client
	gmailClient  *gmailclient.Client
	closers      []func()
}

// Sources returns the work log sources the services read from
func (a *AppContext) Sources() services.Sources {
	s := services.Sources{
		Warehouse: a.Database,
		Cache:     a.Cache,
		CacheTTL:  a.Cfg.Cache.TTL,
	}
	if a.JobsClient != nil {
		s.Live = a.JobsClient
	}
	return s
}

// OnClose registers a cleanup function run by Close in reverse order
func (a *AppContext) OnClose(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closers = append(a.closers, fn)
}

// Close releases database pools and cache connections
func (a *AppContext) Close() {
	a.mu.Lock()
	closers := a.closers
	a.closers = nil
	a.mu.Unlock()

	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}

func (a *AppContext) googleHTTPClient() (*http.Client, error) {
	if a.Auth == nil {
		return nil, fmt.Errorf("google authentication is not configured")
	}
	token, err := a.Auth.Token(a.Ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate with google: %w", err)
	}
	return a.Auth.OAuth.Client(a.Ctx, token), nil
}

// SheetsClient returns the sheets client, authenticating on first use
func (a *AppContext) SheetsClient() (*sheetsclient.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sheetsClient != nil {
		return a.sheetsClient, nil
	}

	httpClient, err := a.googleHTTPClient()
	if err != nil {
		return nil, err
	}
	a.sheetsClient, err = sheetsclient.NewClient(a.Ctx, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	a.Logger.Debug("Sheets client initialized successfully")
	return a.sheetsClient, nil
}

// GmailClient returns the gmail client, authenticating on first use
func (a *AppContext) GmailClient() (*gmailclient.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.gmailClient != nil {
		return a.gmailClient, nil
	}

	httpClient, err := a.googleHTTPClient()
	if err != nil {
		return nil, err
	}
	a.gmailClient, err = gmailclient.NewClient(a.Ctx, httpClient, a.Cfg.GmailUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail client: %w", err)
	}
	a.Logger.Debug("Gmail client initialized successfully")
	return a.gmailClient, nil
}
