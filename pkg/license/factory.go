package license

import (
	"context"
	"io"

	"github.com/DanielSallander/Pdf-Viewer/pkg/config"
	werrors "github.com/DanielSallander/Pdf-Viewer/pkg/errors"
)

// NewProvider builds the plan provider named by cfg.Provider. The returned
// closer releases connections and is never nil.
func NewProvider(ctx context.Context, cfg config.LicenseConfig) (PlanProvider, io.Closer, error) {
	var (
		provider PlanProvider
		closer   io.Closer = nopCloser{}
	)

	switch cfg.Provider {
	case "", "static":
		plans := make([]Plan, 0, len(cfg.Static))
		for _, p := range cfg.Static {
			plans = append(plans, Plan{Identifier: p.Identifier, State: PlanState(p.State)})
		}
		provider = StaticProvider{Result: LookupResult{Plans: plans}}

	case "token":
		tp, err := NewTokenProvider(cfg.Token.Token, cfg.Token.TokenFile, cfg.Token.PublicKeyFile)
		if err != nil {
			return nil, nil, err
		}
		provider = tp

	case "http":
		if cfg.HTTP.URL == "" {
			return nil, nil, werrors.ConfigError(werrors.ErrConfigInvalid, "license.http.url is required").
				WithContext("field", "license.http.url")
		}
		provider = NewHTTPProvider(cfg.HTTP.URL, cfg.HTTP.Timeout)

	case "postgres":
		pp, err := NewPostgresProvider(ctx, cfg.Postgres.DSN, cfg.Postgres.Tenant)
		if err != nil {
			return nil, nil, err
		}
		provider, closer = pp, pp

	case "mysql":
		mp, err := NewMySQLProvider(ctx, cfg.MySQL.DSN, cfg.MySQL.Tenant)
		if err != nil {
			return nil, nil, err
		}
		provider, closer = mp, mp

	default:
		return nil, nil, werrors.ConfigErrorf(werrors.ErrConfigInvalid,
			"unknown license provider %q", cfg.Provider).WithContext("field", "license.provider")
	}

	if cfg.Cache.Enabled {
		rc := NewRedisCache(cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB)
		provider = &CachedProvider{
			Provider: provider,
			Cache:    rc,
			Key:      "pdfviewer:plans:" + cfg.Provider,
			TTL:      cfg.Cache.TTL,
		}
		closer = multiCloser{closer, rc}
	}
	return provider, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var first error
	for _, c := range m {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
