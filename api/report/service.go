package report

import (
	"log"
	"net/http"

	"GestAsd/api"
	"GestAsd/internal/serviceiface"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReportService struct {
	config map[string]interface{}
	pool   *pgxpool.Pool
}

func NewReportService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &ReportService{config: cfg, pool: pool}
}

func (s *ReportService) Name() string {
	return "report"
}

func (s *ReportService) Start() error {
	go StartReportService(s.pool)
	return nil
}

func (s *ReportService) Stop() error {
	return nil
}

func StartReportService(pool *pgxpool.Pool) {
	store := NewStore(pool)

	router := mux.NewRouter()
	router.Use(api.SessionMiddleware)
	router.HandleFunc("/report/full", FullReport(store)).Methods("POST")
	router.HandleFunc("/report/summary", SummaryReport(store)).Methods("POST")
	router.HandleFunc("/report/rendiconto", RendicontoGrouped(store)).Methods("POST")
	router.HandleFunc("/report/export/xlsx", ExportXLSX(store)).Methods("POST")

	adm := router.NewRoute().Subrouter()
	adm.Use(api.AdminMiddleware)
	adm.HandleFunc("/report/iva/monthly-nature", IvaMonthlyNature(store)).Methods("POST")
	adm.HandleFunc("/report/iva/export/xlsx", IvaExportXLSX(store)).Methods("POST")

	log.Println("Report Service started on :7143")
	if err := http.ListenAndServe(":7143", router); err != nil {
		log.Fatalf("Report Service failed: %v", err)
	}
}
