package teachers

import (
	"log"
	"net/http"

	"GestAsd/api"
	"GestAsd/internal/serviceiface"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	storage_go "github.com/supabase-community/storage-go"
)

type TeachersService struct {
	config  map[string]interface{}
	pool    *pgxpool.Pool
	storage *storage_go.Client
}

func NewTeachersService(cfg map[string]interface{}, pool *pgxpool.Pool, storageClient *storage_go.Client) serviceiface.Service {
	return &TeachersService{config: cfg, pool: pool, storage: storageClient}
}

func (s *TeachersService) Name() string {
	return "teachers"
}

func (s *TeachersService) Start() error {
	go StartTeachersService(s.pool, s.storage)
	return nil
}

func (s *TeachersService) Stop() error {
	return nil
}

// StartTeachersService wires the maestri routes. Reads are open to any
// logged-in user; every mutation goes through the admin subrouter.
func StartTeachersService(pool *pgxpool.Pool, storageClient *storage_go.Client) {
	store := NewStore(pool)

	router := mux.NewRouter()
	router.Use(api.SessionMiddleware)

	router.Handle("/maestri/list", ListTeachers(store)).Methods("POST")
	router.Handle("/maestri/documents/{id}", ListDocuments(store)).Methods("POST")
	router.Handle("/maestri/signed-url", SignedURL(storageClient)).Methods("POST")

	adm := router.NewRoute().Subrouter()
	adm.Use(api.AdminMiddleware)
	adm.Handle("/maestri/create", CreateTeacher(store, pool)).Methods("POST")
	adm.Handle("/maestri/update/{id}", UpdateTeacher(store, pool)).Methods("POST")
	adm.Handle("/maestri/photo/{id}", UploadPhoto(store, pool, storageClient)).Methods("POST")
	adm.Handle("/maestri/photo/{id}/delete", DeletePhoto(store, pool, storageClient)).Methods("POST")
	adm.Handle("/maestri/contract/{id}", UploadContract(store, pool, storageClient)).Methods("POST")
	adm.Handle("/maestri/payslip/{id}", UploadPayslip(store, pool, storageClient)).Methods("POST")
	adm.Handle("/maestri/documents/{id}/delete/{docId}", DeleteDocument(store, pool, storageClient)).Methods("POST")

	log.Println("Teachers Service started on :6143")
	if err := http.ListenAndServe(":6143", router); err != nil {
		log.Fatalf("Teachers Service failed: %v", err)
	}
}
