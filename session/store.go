package session

import (
	"errors"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/gormstore"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func NewMemoryStore() scs.Store {
	return memstore.New()
}

// NewDatabaseStore keeps sessions in the sessions table. Expired rows are
// skipped on read and swept every five minutes.
func NewDatabaseStore(db *gorm.DB) (scs.Store, error) {
	if db == nil {
		return nil, errors.New("database connection cannot be nil")
	}
	return gormstore.NewWithCleanupInterval(db, 5*time.Minute)
}

// NewRedisStore keeps sessions in redis under prefix. Only single-node
// clients are supported.
func NewRedisStore(client redis.UniversalClient, prefix string) (scs.Store, error) {
	c, ok := client.(*redis.Client)
	if !ok || c == nil {
		return nil, errors.New("redis session store requires a single-node redis client")
	}
	if prefix == "" {
		return goredisstore.New(c), nil
	}
	return goredisstore.NewWithPrefix(c, prefix), nil
}
