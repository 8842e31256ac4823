package container

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oksasatya/user-account-api/config"
	"github.com/oksasatya/user-account-api/internal/domain/repository"
	"github.com/oksasatya/user-account-api/internal/infrastructure/storage"
)

// app-level container to share constructed components across packages.
// Everything here is built once in main and read by the router modules;
// there is no lazy initialization.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	mongoClient *mongo.Client
	userRepo    repository.UserRepository
	redisClient *redis.Client
	avatarStore storage.AvatarStore
)

func SetConfig(c *config.Config)                { cfg = c }
func GetConfig() *config.Config                 { return cfg }
func SetLogger(l *logrus.Logger)                { logger = l }
func GetLogger() *logrus.Logger                 { return logger }
func SetMongo(c *mongo.Client)                  { mongoClient = c }
func GetMongo() *mongo.Client                   { return mongoClient }
func SetUserRepo(r repository.UserRepository)   { userRepo = r }
func GetUserRepo() repository.UserRepository    { return userRepo }
func SetRedis(r *redis.Client)                  { redisClient = r }
func GetRedis() *redis.Client                   { return redisClient }
func SetAvatarStore(s storage.AvatarStore)      { avatarStore = s }
func GetAvatarStore() storage.AvatarStore       { return avatarStore }
