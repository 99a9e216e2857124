package dash

import (
	"log"
	"net/http"
	"time"

	"GestAsd/api"
	"GestAsd/internal/cache"
	"GestAsd/internal/config"
	"GestAsd/internal/serviceiface"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DashService struct {
	config   map[string]interface{}
	pool     *pgxpool.Pool
	barCache *cache.TTL
}

func NewDashService(cfg map[string]interface{}, pool *pgxpool.Pool, barCache *cache.TTL) serviceiface.Service {
	return &DashService{config: cfg, pool: pool, barCache: barCache}
}

func (s *DashService) Name() string {
	return "dash"
}

func (s *DashService) Start() error {
	go StartDashService(s.pool, s.barCache)
	return nil
}

func (s *DashService) Stop() error {
	return nil
}

func StartDashService(pool *pgxpool.Pool, barCache *cache.TTL) {
	if barCache == nil {
		barCache = cache.NewTTL(config.BarStatsTTLMinutes * time.Minute)
	}
	store := NewStore(pool)

	router := mux.NewRouter()
	router.Use(api.SessionMiddleware)
	router.HandleFunc("/dash/public", PublicDashboard(store)).Methods("POST")
	router.HandleFunc("/dash/stats", Stats(store)).Methods("POST")
	router.HandleFunc("/dash/bar", BarStats(store, barCache)).Methods("POST")

	adm := router.NewRoute().Subrouter()
	adm.Use(api.AdminMiddleware)
	adm.HandleFunc("/dash/admin", AdminDashboard(store)).Methods("POST")

	log.Println("Dash Service started on :8143")
	if err := http.ListenAndServe(":8143", router); err != nil {
		log.Fatalf("Dash Service failed: %v", err)
	}
}
