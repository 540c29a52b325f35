//go:build wireinject
// +build wireinject

package wire

import (
	chathandler "gochat/internal/chat/handler"
	chatservice "gochat/internal/chat/service"
	"gochat/internal/config"
	"gochat/internal/friend"
	"gochat/internal/gateway"
	"gochat/internal/group"
	"gochat/internal/server"
	"gochat/internal/user"

	"github.com/google/wire"
)

var storeSet = wire.NewSet(
	ProvideStores,
	wire.FieldsOf(new(*Stores), "Users", "FriendRequests", "Conversations", "Groups", "Tx"),
)

var serviceSet = wire.NewSet(
	ProvideTokenManager,
	ProvideRequestTokens,
	ProvideTextSealer,
	ProvideUserLedger,
	ProvideChatUsers,
	ProvideGroupUsers,
	user.NewUserService,
	friend.NewFriendService,
	chatservice.NewChatService,
	group.NewGroupService,
	ProvideGateway,
)

var handlerSet = wire.NewSet(
	user.NewHandler,
	friend.NewHandler,
	chathandler.NewChatHandler,
	group.NewHandler,
	gateway.NewHandler,
	wire.Struct(new(server.Handlers), "*"),
)

// InitializeApplication wires the service around an already validated cfg.
func InitializeApplication(cfg *config.Config) (*Application, func(), error) {
	wire.Build(
		storeSet,
		serviceSet,
		handlerSet,
		ProvideRedis,
		ProvideLimiter,
		ProvideRouter,
		ProvideHealth,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil, nil
}
