package resource

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"GestAsd/internal/logger"
	"GestAsd/internal/serviceiface"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ResourceManager periodically pings the registered database handles and
// logs when one stops answering. Services register their pools at boot.
type ResourceManager struct {
	mu                sync.RWMutex
	pools             map[string]*pgxpool.Pool
	dbs               map[string]*sql.DB
	stopChan          chan struct{}
	heartbeatInterval time.Duration
}

func NewResourceManagerService(cfg map[string]interface{}) serviceiface.Service {
	interval := 30 * time.Second
	if val, ok := cfg["heartbeat_interval"]; ok {
		switch v := val.(type) {
		case string:
			if d, err := time.ParseDuration(v); err == nil {
				interval = d
			}
		case int:
			interval = time.Duration(v) * time.Second
		case float64:
			interval = time.Duration(v) * time.Second
		}
	}
	return &ResourceManager{
		pools:             make(map[string]*pgxpool.Pool),
		dbs:               make(map[string]*sql.DB),
		stopChan:          make(chan struct{}),
		heartbeatInterval: interval,
	}
}

func (rm *ResourceManager) Name() string { return "resourcemanager" }

func (rm *ResourceManager) Start() error {
	logger.Audit("ResourceManager started")
	go rm.heartbeatLoop()
	return nil
}

func (rm *ResourceManager) Stop() error {
	close(rm.stopChan)
	return nil
}

func (rm *ResourceManager) RegisterPool(name string, pool *pgxpool.Pool) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.pools[name] = pool
}

func (rm *ResourceManager) RegisterDB(name string, db *sql.DB) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.dbs[name] = db
}

func (rm *ResourceManager) heartbeatLoop() {
	ticker := time.NewTicker(rm.heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-rm.stopChan:
			return
		case <-ticker.C:
			rm.checkAll()
		}
	}
}

func (rm *ResourceManager) checkAll() {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for name, pool := range rm.pools {
		if err := pool.Ping(ctx); err != nil {
			logger.Errorf("heartbeat: pool %s unreachable: %v", name, err)
		}
	}
	for name, db := range rm.dbs {
		if err := db.PingContext(ctx); err != nil {
			logger.Errorf("heartbeat: db %s unreachable: %v", name, err)
		}
	}
}
