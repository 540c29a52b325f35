package wire

import (
	"context"
	"fmt"
	"net/http"
	"time"

	chatrepo "gochat/internal/chat/repository"
	chatservice "gochat/internal/chat/service"
	"gochat/internal/common"
	"gochat/internal/config"
	"gochat/internal/dbmongo"
	"gochat/internal/friend"
	"gochat/internal/gateway"
	"gochat/internal/group"
	"gochat/internal/logger"
	"gochat/internal/memstore"
	"gochat/internal/ratelimit"
	"gochat/internal/server"
	"gochat/internal/user"

	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc/health"
)

type Application struct {
	Config *config.Config
	Router http.Handler
	Stores *Stores
	Health *health.Server
}

// Stores holds one repository per collection, backed by MongoDB or by the
// in-process store depending on STORE_DRIVER.
type Stores struct {
	Users          user.UserRepository
	FriendRequests friend.FriendRepository
	Conversations  chatrepo.ConversationRepository
	Groups         group.GroupRepository
	Tx             friend.Transactor

	mongo *dbmongo.MongoClient
}

// Ping checks the backing store. The in-process store is always reachable.
func (s *Stores) Ping(ctx context.Context) error {
	if s.mongo == nil {
		return nil
	}
	return s.mongo.Ping(ctx)
}

// ProvideConfig loads the environment once and validates it.
func ProvideConfig() (*config.Config, error) {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func ProvideStores(cfg *config.Config) (*Stores, func(), error) {
	switch cfg.Store.Driver {
	case "memory":
		logger.Warn("using in-memory store; data is lost on restart")
		mem := memstore.New()
		return &Stores{
			Users:          mem.Users,
			FriendRequests: mem.FriendRequests,
			Conversations:  mem.Conversations,
			Groups:         mem.Groups,
			Tx:             mem,
		}, func() {}, nil

	case "mongo", "":
		mc, err := dbmongo.NewMongoConnection(cfg)
		if err != nil {
			return nil, nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := mc.EnsureIndexes(ctx); err != nil {
			_ = mc.Close(context.Background())
			return nil, nil, err
		}
		logger.Info("connected to MongoDB", "database", cfg.MongoDB.Database)

		cleanup := func() {
			if err := mc.Close(context.Background()); err != nil {
				logger.Warn("failed to close MongoDB connection", "error", err)
			}
		}
		return &Stores{
			Users:          user.NewUserRepository(mc),
			FriendRequests: friend.NewFriendRepository(mc),
			Conversations:  chatrepo.NewChatRepository(mc),
			Groups:         group.NewGroupRepository(mc),
			Tx:             mc,
			mongo:          mc,
		}, cleanup, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.Store.Driver)
	}
}

func ProvideTokenManager(cfg *config.Config) *common.TokenManager {
	return common.NewTokenManager(cfg.Auth.JWTSecret, cfg.TokenTTL())
}

func ProvideRequestTokens(cfg *config.Config) *friend.RequestTokens {
	return friend.NewRequestTokens(cfg.Auth.FriendTokenSecret)
}

func ProvideTextSealer(cfg *config.Config) (common.TextSealer, error) {
	return common.NewTextSealer(cfg.Messaging.SealKey)
}

func ProvideRedis(cfg *config.Config) (*redis.Client, func()) {
	if cfg.RateLimit.RedisAddr == "" {
		return nil, func() {}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RateLimit.RedisAddr,
		Password: cfg.RateLimit.RedisPassword,
		DB:       cfg.RateLimit.RedisDB,
	})
	return client, func() {
		if err := client.Close(); err != nil {
			logger.Warn("failed to close redis client", "error", err)
		}
	}
}

func ProvideLimiter(cfg *config.Config, client *redis.Client) *ratelimit.Limiter {
	if client == nil {
		logger.Info("rate limiting disabled")
		return nil
	}
	return ratelimit.NewLimiter(ratelimit.NewRedisCounter(client), cfg.RateLimit.WriteLimit, cfg.RateLimitWindow())
}

// The services only see the narrow slices of the user store they need.

func ProvideUserLedger(repo user.UserRepository) friend.UserLedger { return repo }

func ProvideChatUsers(repo user.UserRepository) chatservice.UserDirectory { return repo }

func ProvideGroupUsers(repo user.UserRepository) group.UserDirectory { return repo }

func ProvideGateway(users user.UserService, friends friend.FriendService, chat chatservice.ChatService, groups group.GroupService) *gateway.Service {
	return gateway.NewService(users, friends, chat, groups)
}

func ProvideRouter(tokens *common.TokenManager, limiter *ratelimit.Limiter, stores *Stores, h server.Handlers) http.Handler {
	return server.NewRouter(tokens, limiter, stores, h)
}

func ProvideHealth() *health.Server {
	return health.NewServer()
}
