package members

import (
	"log"
	"net/http"

	"GestAsd/api"
	"GestAsd/internal/serviceiface"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MembersService struct {
	config map[string]interface{}
	pool   *pgxpool.Pool
}

func NewMembersService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &MembersService{config: cfg, pool: pool}
}

func (s *MembersService) Name() string {
	return "members"
}

func (s *MembersService) Start() error {
	go StartMembersService(s.pool)
	return nil
}

func (s *MembersService) Stop() error {
	return nil
}

func StartMembersService(pool *pgxpool.Pool) {
	store := NewStore(pool)

	router := mux.NewRouter()
	router.Use(api.SessionMiddleware)
	router.HandleFunc("/tesserati/list", ListMembers(store)).Methods("POST")
	router.HandleFunc("/tesserati/create", CreateMember(store, pool)).Methods("POST")
	router.HandleFunc("/tesserati/update/{id}", UpdateMember(store, pool)).Methods("POST")
	router.HandleFunc("/tesserati/delete/{id}", DeleteMember(store, pool)).Methods("POST")
	router.HandleFunc("/tesserati/import/upload", UploadImportFile()).Methods("POST")
	router.HandleFunc("/tesserati/import/preview", PreviewImport(store)).Methods("POST")
	router.HandleFunc("/tesserati/import/commit", CommitImport(store, pool)).Methods("POST")

	log.Println("Members Service started on :3143")
	if err := http.ListenAndServe(":3143", router); err != nil {
		log.Fatalf("Members Service failed: %v", err)
	}
}
