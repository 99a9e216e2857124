package admin

import (
	"log"
	"net/http"

	"GestAsd/api"
	"GestAsd/internal/serviceiface"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AdminService struct {
	config map[string]interface{}
	pool   *pgxpool.Pool
}

func NewAdminService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &AdminService{config: cfg, pool: pool}
}

func (s *AdminService) Name() string {
	return "admin"
}

func (s *AdminService) Start() error {
	go StartAdminService(s.pool)
	return nil
}

func (s *AdminService) Stop() error {
	return nil
}

func StartAdminService(pool *pgxpool.Pool) {
	store := NewStore(pool)

	router := mux.NewRouter()
	router.Use(api.SessionMiddleware)
	router.Use(api.AdminMiddleware)
	router.HandleFunc("/admin/users/list", ListUsers(store)).Methods("POST")
	router.HandleFunc("/admin/users/create", CreateUser(store, pool)).Methods("POST")
	router.HandleFunc("/admin/users/delete/{id}", DeleteUser(store, pool)).Methods("POST")
	router.HandleFunc("/admin/users/disable/{id}", DisableUser(store, pool)).Methods("POST")
	router.HandleFunc("/admin/users/enable/{id}", EnableUser(store, pool)).Methods("POST")
	router.HandleFunc("/admin/users/reset-password/{id}", ResetPassword(store, pool)).Methods("POST")
	router.HandleFunc("/admin/audit/list", ListAuditLogs(store)).Methods("POST")

	log.Println("Admin Service started on :9143")
	if err := http.ListenAndServe(":9143", router); err != nil {
		log.Fatalf("Admin Service failed: %v", err)
	}
}
