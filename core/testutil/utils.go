package testutil

import (
	"context"
	"fmt"
	"os"
	"time"

	sdklogging "github.com/Layr-Labs/eigensdk-go/logging"
	"github.com/allegro/bigcache/v3"
	"github.com/ethereum/go-ethereum/common"

	"github.com/AvaProtocol/gasless-vote/storage"
)

var (
	TestVoter      = common.HexToAddress("0xD7050816337a3f8f690F8083B5Ff8019D50c0E50")
	TestEntrypoint = common.HexToAddress("0x0000000071727De22E5E9d8BAf0edAc6f37da032")
	TestFactory    = common.HexToAddress("0x91E60e0613810449d098b0b5Ec8b51A0FE8c8985")
	TestPaymaster  = common.HexToAddress("0xB985af5f96EF2722DC99aEBA573520903B86505e")
	TestAzorius    = common.HexToAddress("0x00000000000000000000000000000000000a2a21")
	TestStrategy   = common.HexToAddress("0x0000000000000000000000000000000000057a7e")
)

// Shortcut to initialize a storage at the given path, panic if we cannot create db
func TestMustDB() storage.Storage {
	dir, err := os.MkdirTemp("", "gvtest")
	if err != nil {
		panic(err)
	}

	db, err := storage.NewWithPath(dir)
	if err != nil {
		panic(err)
	}
	return db
}

func GetLogger() sdklogging.Logger {
	logger, err := sdklogging.NewZapLogger("development")
	if err != nil {
		panic(err)
	}
	return logger
}

func GetDefaultCache() *bigcache.BigCache {
	config := bigcache.DefaultConfig(10 * time.Minute)
	// tests never need the production allocation
	config.Shards = 16
	config.MaxEntriesInWindow = 1000
	config.MaxEntrySize = 64
	config.Verbose = false

	cache, err := bigcache.New(context.Background(), config)
	if err != nil {
		panic(fmt.Errorf("error get default cache for test"))
	}
	return cache
}
