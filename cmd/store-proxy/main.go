// Command store-proxy runs a small caching read-through proxy in front of
// the StudentStore API. It answers feed requests from Redis when possible
// and exposes health and Prometheus endpoints.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/studentstore/storefront-client/pkg/api"
	"github.com/studentstore/storefront-client/pkg/cache"
	"github.com/studentstore/storefront-client/pkg/logging"
)

type config struct {
	RedisURL  string        `env:"REDIS_URL" envDefault:"localhost:6379"`
	Port      string        `env:"PORT" envDefault:"8080"`
	APIURL    string        `env:"STORE_API_URL" envDefault:"https://api.studentstore.example"`
	UserAgent string        `env:"USER_AGENT" envDefault:"storefront-client/0.1.0"`
	CacheTTL  time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	LogLevel  string        `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool          `env:"LOG_PRETTY" envDefault:"false"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		panic(fmt.Sprintf("failed to parse environment: %v", err))
	}

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
	})

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	})

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Str("redis", cfg.RedisURL).Msg("Failed to connect to Redis")
	}
	logger.Info().Str("redis", cfg.RedisURL).Msg("Connected to Redis")

	manager := cache.NewManager(cache.NewRedisStore(redisClient))

	apiConfig := api.DefaultConfig(cfg.APIURL)
	apiConfig.UserAgent = cfg.UserAgent
	client, err := api.New(apiConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create API client")
	}

	proxy := &proxyServer{
		client:   client,
		manager:  manager,
		cacheTTL: cfg.CacheTTL,
		logger:   logging.NewLogger("store-proxy"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/store/posts", proxy.postsHandler)
	mux.HandleFunc("/store/categories/", proxy.categoryHandler)

	addr := ":" + cfg.Port
	logger.Info().Str("addr", addr).Str("api", cfg.APIURL).Msg("Starting store proxy")

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

type proxyServer struct {
	client   *api.Client
	manager  *cache.Manager
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// postsHandler serves the cached posts feed.
func (p *proxyServer) postsHandler(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	sort := r.URL.Query().Get("sort")

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	key := cache.PageKey("posts", page, sort)

	var result api.PostPage
	if err := p.manager.Get(ctx, key, &result); err == nil {
		writeJSON(w, result)
		return
	}

	fetched, err := p.client.ListPosts(ctx, page, 20, sort)
	if err != nil {
		p.logger.Warn().Err(err).Int("page", page).Msg("Posts fetch failed")
		http.Error(w, fmt.Sprintf("upstream request failed: %v", err), http.StatusBadGateway)
		return
	}

	_ = p.manager.Set(ctx, key, fetched, p.cacheTTL)
	writeJSON(w, fetched)
}

// categoryHandler serves cached category product listings.
// Path shape: /store/categories/{id}/products
func (p *proxyServer) categoryHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/store/categories/")
	categoryID, tail, found := strings.Cut(rest, "/")
	if !found || tail != "products" || categoryID == "" {
		http.NotFound(w, r)
		return
	}

	page := queryInt(r, "page", 1)
	sort := r.URL.Query().Get("sort")

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	key := cache.PageKey("category:"+categoryID, page, sort)

	var result api.ProductPage
	if err := p.manager.Get(ctx, key, &result); err == nil {
		writeJSON(w, result)
		return
	}

	fetched, err := p.client.CategoryProducts(ctx, categoryID, page, 20, sort)
	if err != nil {
		p.logger.Warn().Err(err).Str("category", categoryID).Int("page", page).Msg("Category fetch failed")
		http.Error(w, fmt.Sprintf("upstream request failed: %v", err), http.StatusBadGateway)
		return
	}

	_ = p.manager.Set(ctx, key, fetched, p.cacheTTL)
	writeJSON(w, fetched)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "encoding failed", http.StatusInternalServerError)
	}
}
