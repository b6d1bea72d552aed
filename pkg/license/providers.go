package license

import (
	"context"
	"crypto/rsa"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql" // registers the "mysql" driver
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	werrors "github.com/DanielSallander/Pdf-Viewer/pkg/errors"
)

// StaticProvider returns a fixed plan list.
type StaticProvider struct {
	Result LookupResult
}

// AvailablePlans returns the configured plans.
func (p StaticProvider) AvailablePlans(ctx context.Context) (LookupResult, error) {
	return p.Result, ctx.Err()
}

// -----------------------------------------------------------------------------
// Signed Token
// -----------------------------------------------------------------------------

// TokenProvider reads plans from an RS256-signed token.
//
// Claims: {"plans": [{"spIdentifier": "...", "state": "Active"}],
// "isLicenseUnsupportedEnv": false} plus the registered claims.
type TokenProvider struct {
	Token     string
	PublicKey *rsa.PublicKey
}

// NewTokenProvider loads the public key from a PEM file. The token is read
// from tokenFile when token is empty.
func NewTokenProvider(token, tokenFile, publicKeyFile string) (*TokenProvider, error) {
	pem, err := os.ReadFile(publicKeyFile)
	if err != nil {
		return nil, werrors.WrapIO(err, werrors.ErrIOReadFailed, "cannot read license public key").
			WithContext("path", publicKeyFile)
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM(pem)
	if err != nil {
		return nil, werrors.AttachSuggestions(werrors.WrapLicense(err, werrors.ErrLicenseTokenInvalid,
			"invalid license public key").WithContext("path", publicKeyFile))
	}
	if token == "" && tokenFile != "" {
		raw, err := os.ReadFile(tokenFile)
		if err != nil {
			return nil, werrors.WrapIO(err, werrors.ErrIOReadFailed, "cannot read license token").
				WithContext("path", tokenFile)
		}
		token = string(raw)
	}
	return &TokenProvider{Token: token, PublicKey: key}, nil
}

type tokenClaims struct {
	Plans          []Plan `json:"plans"`
	UnsupportedEnv bool   `json:"isLicenseUnsupportedEnv"`
	jwt.RegisteredClaims
}

// AvailablePlans verifies the token and returns its plans.
func (p *TokenProvider) AvailablePlans(ctx context.Context) (LookupResult, error) {
	if err := ctx.Err(); err != nil {
		return LookupResult{}, err
	}

	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(p.Token, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.PublicKey, nil
	})
	if err != nil {
		return LookupResult{}, werrors.AttachSuggestions(werrors.WrapLicense(err, werrors.ErrLicenseTokenInvalid,
			"license token failed verification"))
	}
	return LookupResult{Plans: claims.Plans, UnsupportedEnv: claims.UnsupportedEnv}, nil
}

// -----------------------------------------------------------------------------
// HTTP
// -----------------------------------------------------------------------------

// HTTPProvider fetches a LookupResult document from a URL.
type HTTPProvider struct {
	URL    string
	Client *http.Client
}

// NewHTTPProvider creates a provider with its own client timeout.
func NewHTTPProvider(url string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{URL: url, Client: &http.Client{Timeout: timeout}}
}

// AvailablePlans performs GET URL and decodes the JSON body.
func (p *HTTPProvider) AvailablePlans(ctx context.Context) (LookupResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return LookupResult{}, werrors.WrapNetwork(err, werrors.ErrNetworkRequestFailed, "bad plan lookup url")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return LookupResult{}, werrors.WrapNetwork(err, werrors.ErrLicenseLookupFailed, "plan lookup request failed").
			WithContext("url", p.URL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return LookupResult{}, werrors.New(werrors.ErrLicenseLookupFailed, werrors.CategoryNetwork,
			fmt.Sprintf("plan lookup returned %s", resp.Status)).WithContext("url", p.URL)
	}

	var result LookupResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return LookupResult{}, werrors.WrapNetwork(err, werrors.ErrLicenseLookupFailed, "invalid plan lookup response")
	}
	return result, nil
}

// -----------------------------------------------------------------------------
// SQL Plan Stores
// -----------------------------------------------------------------------------

// Queries against a service_plans(tenant, sp_identifier, state) table.
const (
	postgresPlansQuery = `SELECT sp_identifier, state FROM service_plans WHERE tenant = $1`
	mysqlPlansQuery    = `SELECT sp_identifier, state FROM service_plans WHERE tenant = ?`
)

// planRows is satisfied by both pgx.Rows and *sql.Rows.
type planRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func collectPlans(rows planRows) ([]Plan, error) {
	var plans []Plan
	for rows.Next() {
		var id, state string
		if err := rows.Scan(&id, &state); err != nil {
			return nil, err
		}
		plans = append(plans, Plan{Identifier: id, State: PlanState(state)})
	}
	return plans, rows.Err()
}

// PostgresProvider reads plans from PostgreSQL.
type PostgresProvider struct {
	Pool   *pgxpool.Pool
	Tenant string
}

// NewPostgresProvider opens a connection pool for dsn.
func NewPostgresProvider(ctx context.Context, dsn, tenant string) (*PostgresProvider, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, werrors.WrapConfig(err, werrors.ErrConfigInvalid, "failed to parse postgres dsn").
			WithContext("field", "license.postgres.dsn")
	}
	config.MaxConns = 4
	config.MaxConnLifetime = 3 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, werrors.WrapNetwork(err, werrors.ErrLicenseLookupFailed, "failed to connect postgres pool")
	}
	return &PostgresProvider{Pool: pool, Tenant: tenant}, nil
}

// AvailablePlans queries the tenant's plans.
func (p *PostgresProvider) AvailablePlans(ctx context.Context) (LookupResult, error) {
	rows, err := p.Pool.Query(ctx, postgresPlansQuery, p.Tenant)
	if err != nil {
		return LookupResult{}, werrors.WrapNetwork(err, werrors.ErrLicenseLookupFailed, "postgres plan query failed")
	}
	defer rows.Close()

	plans, err := collectPlans(rows)
	if err != nil {
		return LookupResult{}, werrors.WrapNetwork(err, werrors.ErrLicenseLookupFailed, "postgres plan scan failed")
	}
	return LookupResult{Plans: plans}, nil
}

// Close releases the pool.
func (p *PostgresProvider) Close() error {
	p.Pool.Close()
	return nil
}

// MySQLProvider reads plans from MySQL.
type MySQLProvider struct {
	DB     *sql.DB
	Tenant string
}

// NewMySQLProvider opens dsn with the mysql driver and pings it.
func NewMySQLProvider(ctx context.Context, dsn, tenant string) (*MySQLProvider, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, werrors.WrapConfig(err, werrors.ErrConfigInvalid, "failed to parse mysql dsn").
			WithContext("field", "license.mysql.dsn")
	}
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(4)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, werrors.WrapNetwork(err, werrors.ErrLicenseLookupFailed, "mysql ping failed")
	}
	log.Printf("[license] mysql plan store connected")
	return &MySQLProvider{DB: db, Tenant: tenant}, nil
}

// AvailablePlans queries the tenant's plans.
func (p *MySQLProvider) AvailablePlans(ctx context.Context) (LookupResult, error) {
	rows, err := p.DB.QueryContext(ctx, mysqlPlansQuery, p.Tenant)
	if err != nil {
		return LookupResult{}, werrors.WrapNetwork(err, werrors.ErrLicenseLookupFailed, "mysql plan query failed")
	}
	defer rows.Close()

	plans, err := collectPlans(rows)
	if err != nil {
		return LookupResult{}, werrors.WrapNetwork(err, werrors.ErrLicenseLookupFailed, "mysql plan scan failed")
	}
	return LookupResult{Plans: plans}, nil
}

// Close closes the database handle.
func (p *MySQLProvider) Close() error {
	return p.DB.Close()
}
