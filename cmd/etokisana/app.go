package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jrsteele09/etokisana-client/cart"
	cartrepofake "github.com/jrsteele09/etokisana-client/cart/repofake"
	"github.com/jrsteele09/etokisana-client/catalog"
	"github.com/jrsteele09/etokisana-client/internal/config"
	clienterrors "github.com/jrsteele09/etokisana-client/internal/errors"
	"github.com/jrsteele09/etokisana-client/sessions"
	"github.com/jrsteele09/etokisana-client/token"
	"github.com/jrsteele09/etokisana-client/token/refresh"
	"github.com/jrsteele09/etokisana-client/transport"
	"github.com/jrsteele09/etokisana-client/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const refreshTokenFile = "refresh_tokens.json"

// app holds the wired client for one command invocation.
type app struct {
	cfg         config.Config
	tokens      *token.Store
	client      *transport.Client
	session     *sessions.Manager
	cart        *cart.Cart
	catalog     *catalog.Catalog
	users       *users.Service
	registry    *prometheus.Registry
	redis       *redis.Client
	metricsFile string
}

type options struct {
	configFile  string
	logLevel    string
	baseURL     string
	metricsFile string
}

func (a *app) init(ctx context.Context, opts options) error {
	configFile := opts.configFile
	if configFile == "" {
		configFile = config.GetConfigFile()
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.metricsFile = opts.metricsFile

	setupLogging(firstNonEmpty(opts.logLevel, cfg.GetLogLevel()))

	baseURL := firstNonEmpty(opts.baseURL, cfg.GetAPIBaseURL())
	dataFolder := cfg.GetDataFolder()

	a.tokens, err = token.NewStore(baseURL,
		token.WithRefreshRepo(refresh.NewFileRepo(filepath.Join(dataFolder, refreshTokenFile))),
		token.WithRefreshTokenExpiry(cfg.GetRefreshTokenExpiry()),
	)
	if err != nil {
		return err
	}

	a.registry = prometheus.NewRegistry()
	metrics, err := transport.NewMetrics(a.registry)
	if err != nil {
		return err
	}

	rps, burst := cfg.GetRateLimit()
	a.client, err = transport.New(baseURL, a.tokens,
		transport.WithTimeout(cfg.GetRequestTimeout()),
		transport.WithLoginPath(cfg.GetLoginPath()),
		transport.WithNavigator(transport.NavigatorFunc(func(string) {
			fmt.Fprintln(os.Stderr, "Session expired, run `etokisana login` to sign in again.")
		})),
		transport.WithRateLimit(rps, burst),
		transport.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}

	repo, err := a.cartRepo()
	if err != nil {
		return err
	}
	a.session = sessions.NewManager(a.client, a.tokens)
	a.cart = cart.New(repo)
	a.cart.Attach(a.session)
	a.catalog = catalog.New(a.client)
	a.users = users.NewService(a.client)

	a.session.InitAuth(ctx)
	log.Debug().
		Str("env", cfg.GetEnv()).
		Str("api", baseURL).
		Bool("authenticated", a.session.Session().Authenticated).
		Msg("Client ready")
	return nil
}

func (a *app) cartRepo() (cart.Repo, error) {
	switch a.cfg.GetCartStore() {
	case config.CartStoreRedis:
		a.redis = redis.NewClient(&redis.Options{
			Addr:     a.cfg.GetRedisAddr(),
			Password: a.cfg.GetRedisPassword(),
			DB:       a.cfg.GetRedisDB(),
		})
		return cart.NewRedisRepo(a.redis), nil
	case config.CartStoreMemory:
		return cartrepofake.NewFakeCartRepo(), nil
	default:
		return cart.NewFileRepo(filepath.Join(a.cfg.GetDataFolder(), "carts")), nil
	}
}

// requireSession fails unless a user is signed in, optionally with one of
// the comma separated roles. Role checks here only save a round trip; the API
// enforces them.
func (a *app) requireSession(roles string) (sessions.Session, error) {
	s := a.session.Session()
	if !s.Authenticated {
		return s, clienterrors.New(clienterrors.ErrUnauthenticated, "not signed in, run `etokisana login` first", s.LastError)
	}
	if roles != "" && !s.HasRole(roles) {
		return s, clienterrors.New(clienterrors.ErrUnauthenticated, fmt.Sprintf("requires role %s", roles), nil)
	}
	return s, nil
}

func (a *app) close() {
	if a.metricsFile != "" && a.registry != nil {
		if err := prometheus.WriteToTextfile(a.metricsFile, a.registry); err != nil {
			log.Err(err).Str("file", a.metricsFile).Msg("Failed to write metrics")
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
