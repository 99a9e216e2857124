package appmanager

import (
	"database/sql"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"GestAsd/api"
	"GestAsd/api/accounts"
	"GestAsd/api/admin"
	"GestAsd/api/auth"
	"GestAsd/api/dash"
	"GestAsd/api/ledger"
	"GestAsd/api/members"
	"GestAsd/api/report"
	"GestAsd/api/teachers"
	"GestAsd/internal/cache"
	"GestAsd/internal/config"
	"GestAsd/internal/jobs"
	"GestAsd/internal/logger"
	"GestAsd/internal/progress"
	"GestAsd/internal/resource"
	"GestAsd/internal/serviceiface"

	"github.com/jackc/pgx/v5/pgxpool"
	storage_go "github.com/supabase-community/storage-go"
	"gopkg.in/yaml.v3"
)

var AuthDB *sql.DB
var db *sql.DB
var pgxPool *pgxpool.Pool
var storageClient *storage_go.Client

// Shared across services: bulk jobs report progress here, the dash service
// caches bar stats, the cron service sweeps both.
var bulkTracker = progress.NewTracker()
var barCache = cache.NewTTL(config.BarStatsTTLMinutes * time.Minute)

func SetDB(database *sql.DB) {
	db = database
	AuthDB = database
}

func SetPgxPool(pool *pgxpool.Pool) {
	pgxPool = pool
}

func SetStorageClient(c *storage_go.Client) {
	storageClient = c
}

func GetDB() *sql.DB {
	return db
}

func GetPgxPool() *pgxpool.Pool {
	return pgxPool
}

var serviceConstructors = map[string]func(map[string]interface{}) serviceiface.Service{
	"logger": func(cfg map[string]interface{}) serviceiface.Service {
		opts := logger.Options{}
		if cfg != nil {
			if v, ok := cfg["folder_path"].(string); ok {
				opts.FolderPath = v
			}
			if v, ok := cfg["max_file_mb"].(int); ok {
				opts.MaxFileMB = v
			}
			if v, ok := cfg["retention_days"].(int); ok {
				opts.RetentionDays = v
			}
		}
		return logger.NewService(opts)
	},
	"resourcemanager": func(cfg map[string]interface{}) serviceiface.Service {
		return resource.NewResourceManagerService(cfg)
	},
	"auth": func(cfg map[string]interface{}) serviceiface.Service {
		maxUsers := 0
		if cfg != nil {
			if v, ok := cfg["max_users"].(int); ok {
				maxUsers = v
			}
		}
		return auth.NewAuthService(AuthDB, maxUsers)
	},
	"gateway": func(cfg map[string]interface{}) serviceiface.Service {
		return api.NewGatewayService(cfg)
	},
	"members": func(cfg map[string]interface{}) serviceiface.Service {
		return members.NewMembersService(cfg, pgxPool)
	},
	"ledger": func(cfg map[string]interface{}) serviceiface.Service {
		return ledger.NewLedgerService(cfg, pgxPool, bulkTracker)
	},
	"accounts": func(cfg map[string]interface{}) serviceiface.Service {
		return accounts.NewAccountsService(cfg, pgxPool)
	},
	"teachers": func(cfg map[string]interface{}) serviceiface.Service {
		return teachers.NewTeachersService(cfg, pgxPool, storageClient)
	},
	"report": func(cfg map[string]interface{}) serviceiface.Service {
		return report.NewReportService(cfg, pgxPool)
	},
	"dash": func(cfg map[string]interface{}) serviceiface.Service {
		return dash.NewDashService(cfg, pgxPool, barCache)
	},
	"admin": func(cfg map[string]interface{}) serviceiface.Service {
		return admin.NewAdminService(cfg, pgxPool)
	},
	"cron": func(cfg map[string]interface{}) serviceiface.Service {
		return jobs.NewCronService(cfg, pgxPool, bulkTracker, barCache)
	},
}

// ------------------- MANAGER -------------------

type AppManager struct {
	services []serviceiface.Service
	mu       sync.Mutex
}

func NewAppManager() *AppManager {
	return &AppManager{
		services: make([]serviceiface.Service, 0),
	}
}

func (am *AppManager) RegisterService(s serviceiface.Service) {
	am.mu.Lock()
	defer am.mu.Unlock()
	am.services = append(am.services, s)
}

func (am *AppManager) StartAll() error {
	am.mu.Lock()
	defer am.mu.Unlock()

	// resourcemanager goes last so every pool is registered before the
	// first heartbeat.
	for _, service := range am.services {
		if service.Name() == "resourcemanager" {
			continue
		}
		fmt.Println("Starting service:", service.Name())
		if err := service.Start(); err != nil {
			return fmt.Errorf("failed to start service %s: %w", service.Name(), err)
		}
	}

	for _, service := range am.services {
		if service.Name() == "resourcemanager" {
			fmt.Println("Starting service:", service.Name())
			if err := service.Start(); err != nil {
				return fmt.Errorf("failed to start service %s: %w", service.Name(), err)
			}
		}
	}
	return nil
}

func (am *AppManager) StopAll() error {
	am.mu.Lock()
	defer am.mu.Unlock()
	for i := len(am.services) - 1; i >= 0; i-- {
		svc := am.services[i]
		if err := svc.Stop(); err != nil {
			return fmt.Errorf("failed to stop service %s: %w", svc.Name(), err)
		}
	}
	return nil
}

// ------------------- YAML CONFIG -------------------

type ServiceSequencer struct {
	Services []ServiceConfig `yaml:"services"`
}

type ServiceConfig struct {
	Name       string                 `yaml:"name"`
	StartOrder int                    `yaml:"start_order"`
	Config     map[string]interface{} `yaml:"config"`
}

func LoadServiceSequence(path string) ([]ServiceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var seq ServiceSequencer
	if err := yaml.Unmarshal(data, &seq); err != nil {
		return nil, err
	}

	sort.Slice(seq.Services, func(i, j int) bool {
		return seq.Services[i].StartOrder < seq.Services[j].StartOrder
	})

	return seq.Services, nil
}

func (am *AppManager) AutoRegisterServices(configs []ServiceConfig) {
	for _, svc := range configs {
		constructor, ok := serviceConstructors[svc.Name]
		if !ok {
			continue
		}
		service := constructor(svc.Config)
		am.RegisterService(service)
		if svc.Name == "auth" {
			if realAuthSvc, ok := service.(*auth.AuthService); ok {
				api.SetAuthService(realAuthSvc)
				auth.SetGlobalAuthService(realAuthSvc)
			}
		}
	}

	for _, svc := range am.services {
		if l, ok := svc.(*logger.Service); ok {
			logger.SetGlobalLogger(l)
			break
		}
	}

	for _, svc := range am.services {
		if rm, ok := svc.(*resource.ResourceManager); ok {
			if pgxPool != nil {
				rm.RegisterPool("domain", pgxPool)
			}
			if db != nil {
				rm.RegisterDB("auth", db)
			}
			break
		}
	}
}

func (am *AppManager) GetServiceByName(name string) serviceiface.Service {
	for _, svc := range am.services {
		if svc.Name() == name {
			return svc
		}
	}
	return nil
}
