package config

import "strings"

type CartStore string

const (
	CartStoreFile   CartStore = "file"
	CartStoreRedis  CartStore = "redis"
	CartStoreMemory CartStore = "memory"
)

const (
	cartStoreVar     = "CART_STORE"
	redisAddrVar     = "REDIS_ADDR"
	redisPasswordVar = "REDIS_PASSWORD"
	redisDBVar       = "REDIS_DB"
)

type Storage struct {
	src source
}

var _ StorageConfig = Storage{}

func (s Storage) GetCartStore() CartStore {
	switch store := CartStore(strings.ToLower(s.src.get(cartStoreVar, string(CartStoreFile)))); store {
	case CartStoreFile, CartStoreRedis, CartStoreMemory:
		return store
	default:
		return CartStoreFile
	}
}

func (s Storage) GetRedisAddr() string {
	return s.src.get(redisAddrVar, "localhost:6379")
}

func (s Storage) GetRedisPassword() string {
	return s.src.get(redisPasswordVar, "")
}

func (s Storage) GetRedisDB() int {
	return s.src.getInt(redisDBVar, 0)
}
