package accounts

import (
	"log"
	"net/http"

	"GestAsd/api"
	"GestAsd/internal/serviceiface"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AccountsService struct {
	config map[string]interface{}
	pool   *pgxpool.Pool
}

func NewAccountsService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &AccountsService{config: cfg, pool: pool}
}

func (s *AccountsService) Name() string {
	return "accounts"
}

func (s *AccountsService) Start() error {
	go StartAccountsService(s.pool)
	return nil
}

func (s *AccountsService) Stop() error {
	return nil
}

func StartAccountsService(pool *pgxpool.Pool) {
	store := NewStore(pool)

	router := mux.NewRouter()
	router.Use(api.SessionMiddleware)
	router.HandleFunc("/conti/list", ListAccounts(store)).Methods("POST")
	router.HandleFunc("/conti/create", CreateAccount(store, pool)).Methods("POST")
	router.HandleFunc("/conti/update/{id}", UpdateAccount(store, pool)).Methods("POST")
	router.HandleFunc("/conti/delete/{id}", DeleteAccount(store, pool)).Methods("POST")

	log.Println("Accounts Service started on :5143")
	if err := http.ListenAndServe(":5143", router); err != nil {
		log.Fatalf("Accounts Service failed: %v", err)
	}
}
