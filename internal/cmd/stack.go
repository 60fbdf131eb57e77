package cmd

import (
	"github.com/pkg/errors"

	"github.com/flanux/bankportal/apiclient"
	"github.com/flanux/bankportal/authapi"
	"github.com/flanux/bankportal/internal/config"
	"github.com/flanux/bankportal/keystore"
	"github.com/flanux/bankportal/session"
)

// stack is the full client wiring a portal process carries: persisted
// storage, the session store hydrated from it, and the credentialed client.
type stack struct {
	store  *session.Store
	client *apiclient.Client
	portal config.PortalKind
}

func buildStack() (*stack, error) {
	profilePath := flagProfile
	if profilePath == "" {
		var err error
		profilePath, err = config.DefaultProfilePath()
		if err != nil {
			return nil, err
		}
	}
	profile, err := config.LoadProfile(profilePath)
	if err != nil {
		return nil, err
	}
	baseURL, portal, dataDir := profile.Resolve()

	storage, err := keystore.NewFileRepo(dataDir)
	if err != nil {
		return nil, errors.Wrap(err, "[buildStack] keystore.NewFileRepo")
	}

	cfg := config.New()
	store, err := session.NewStore(
		authapi.New(baseURL, authapi.WithTimeout(cfg.GetLoginTimeout())),
		storage,
		session.WithLogoutTimeout(cfg.GetLogoutTimeout()),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[buildStack] session.NewStore")
	}

	return &stack{
		store:  store,
		client: apiclient.New(baseURL, store, apiclient.WithTimeout(cfg.GetRequestTimeout())),
		portal: portal,
	}, nil
}
