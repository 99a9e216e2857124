package ledger

import (
	"log"
	"net/http"

	"GestAsd/api"
	"GestAsd/internal/progress"
	"GestAsd/internal/serviceiface"
	"GestAsd/internal/stream"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LedgerService struct {
	config  map[string]interface{}
	pool    *pgxpool.Pool
	tracker *progress.Tracker
}

func NewLedgerService(cfg map[string]interface{}, pool *pgxpool.Pool, tracker *progress.Tracker) serviceiface.Service {
	return &LedgerService{config: cfg, pool: pool, tracker: tracker}
}

func (s *LedgerService) Name() string {
	return "ledger"
}

func (s *LedgerService) Start() error {
	go StartLedgerService(s.pool, s.tracker)
	return nil
}

func (s *LedgerService) Stop() error {
	return nil
}

func StartLedgerService(pool *pgxpool.Pool, tracker *progress.Tracker) {
	store := NewStore(pool)
	hub := stream.NewHub()

	router := mux.NewRouter()
	router.Use(api.SessionMiddleware)
	router.HandleFunc("/movimenti/list", ListEntries(store)).Methods("POST")
	router.HandleFunc("/movimenti/create", CreateEntry(store, pool)).Methods("POST")
	router.HandleFunc("/movimenti/delete/{id}", DeleteEntry(store, pool)).Methods("POST")
	router.HandleFunc("/movimenti/meta/{id}", UpdateEntryMeta(store)).Methods("POST")
	router.HandleFunc("/movimenti/bulk/selected", BulkUpdateSelected(store, pool, tracker, hub)).Methods("POST")
	router.HandleFunc("/movimenti/bulk/all", BulkUpdateAll(store, pool, tracker, hub)).Methods("POST")
	router.HandleFunc("/movimenti/bulk/status/{id}", BulkJobStatus(tracker)).Methods("POST")
	router.HandleFunc("/movimenti/bulk/stream/{id}", BulkJobStream(tracker, hub)).Methods("GET")
	router.HandleFunc("/movimenti/bulk/cancel/{id}", BulkJobCancel(tracker)).Methods("POST")
	router.HandleFunc("/movimenti/import/sumup", ImportSumUp(store, pool)).Methods("POST")

	log.Println("Ledger Service started on :4143")
	if err := http.ListenAndServe(":4143", router); err != nil {
		log.Fatalf("Ledger Service failed: %v", err)
	}
}
