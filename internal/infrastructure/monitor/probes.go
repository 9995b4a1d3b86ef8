package monitor

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/powertimer/internal/infrastructure/boltdb"
)

func PostgresProbe(pool *pgxpool.Pool) Probe {
	return Probe{
		Name:     "postgresql",
		Required: true,
		Timeout:  3 * time.Second,
		Check: func(ctx context.Context) (Details, error) {
			if err := pool.Ping(ctx); err != nil {
				return nil, err
			}
			stat := pool.Stat()
			return Details{"total_conns": stat.TotalConns(), "idle_conns": stat.IdleConns()}, nil
		},
	}
}

// RedisProbe is optional: the event bus degrades to single-instance operation.
func RedisProbe(client *redislib.Client) Probe {
	return Probe{
		Name:    "redis",
		Timeout: 2 * time.Second,
		Check: func(ctx context.Context) (Details, error) {
			return nil, client.Ping(ctx).Err()
		},
	}
}

func BoltProbe(db *bolt.DB) Probe {
	return Probe{
		Name:     "boltdb",
		Required: true,
		Check: func(ctx context.Context) (Details, error) {
			timers, err := boltdb.Size(db, boltdb.BucketTimers)
			if err != nil {
				return nil, err
			}
			templates, err := boltdb.Size(db, boltdb.BucketTemplates)
			if err != nil {
				return nil, err
			}
			return Details{"timers": timers, "templates": templates}, nil
		},
	}
}

// CountdownProbe reports how many timers the local countdown tracks.
func CountdownProbe(tracked func() int) Probe {
	return Probe{
		Name: "countdown",
		Check: func(ctx context.Context) (Details, error) {
			return Details{"tracked": tracked()}, nil
		},
	}
}
