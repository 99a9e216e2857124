package logger

import (
	"archive/zip"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Options controls rotation and retention of the application log.
type Options struct {
	FolderPath    string
	MaxFileMB     int
	RetentionDays int
}

// Service writes the application log to rotating files under FolderPath.
// Files older than RetentionDays are zipped and removed once a day.
type Service struct {
	opts       Options
	file       *os.File
	mu         sync.Mutex
	stopCh     chan struct{}
	wg         sync.WaitGroup
	currentLog string
}

func NewService(opts Options) *Service {
	if opts.FolderPath == "" {
		opts.FolderPath = "./logs"
	}
	return &Service{
		opts:   opts,
		stopCh: make(chan struct{}),
	}
}

func (s *Service) Name() string {
	return "Logger"
}

func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.opts.FolderPath, 0755); err != nil {
		return err
	}
	logFile := s.nextLogFileName()
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	s.file = file
	s.currentLog = logFile
	log.SetOutput(file)
	log.Println("[Logger] started, writing to", logFile)

	s.wg.Add(1)
	go s.backgroundWorker()

	return nil
}

func (s *Service) Stop() error {
	close(s.stopCh)
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file != nil {
		log.Println("[Logger] stopping")
		return s.file.Close()
	}
	return nil
}

func (s *Service) nextLogFileName() string {
	timestamp := time.Now().Format("20060102_150405")
	return filepath.Join(s.opts.FolderPath, fmt.Sprintf("gestasd_%s.log", timestamp))
}

func (s *Service) rotateIfNeeded() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	info, err := s.file.Stat()
	if err != nil {
		return err
	}
	maxBytes := int64(s.opts.MaxFileMB) * 1024 * 1024
	if maxBytes > 0 && info.Size() >= maxBytes {
		s.file.Close()
		newLog := s.nextLogFileName()
		file, err := os.OpenFile(newLog, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		s.file = file
		s.currentLog = newLog
		log.SetOutput(file)
		log.Println("[Logger] rotated log file to", newLog)
	}
	return nil
}

func (s *Service) backgroundWorker() {
	defer s.wg.Done()
	ticker := time.NewTicker(10 * time.Second)
	retentionTicker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	defer retentionTicker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.rotateIfNeeded()
		case <-retentionTicker.C:
			s.zipAndCleanOldLogs()
		}
	}
}

func (s *Service) zipAndCleanOldLogs() {
	if s.opts.RetentionDays <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -s.opts.RetentionDays)
	files, err := os.ReadDir(s.opts.FolderPath)
	if err != nil {
		return
	}
	zipName := filepath.Join(s.opts.FolderPath, fmt.Sprintf("logs_%s.zip", time.Now().Format("20060102")))
	zipFile, err := os.Create(zipName)
	if err != nil {
		return
	}
	defer zipFile.Close()
	zipWriter := zip.NewWriter(zipFile)
	defer zipWriter.Close()

	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".log" {
			continue
		}
		fullPath := filepath.Join(s.opts.FolderPath, f.Name())
		info, err := os.Stat(fullPath)
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		w, err := zipWriter.Create(f.Name())
		if err != nil {
			continue
		}
		src, err := os.Open(fullPath)
		if err != nil {
			continue
		}
		io.Copy(w, src)
		src.Close()
		os.Remove(fullPath)
	}
}

// Info logs an operational message for a request-scoped event.
func (s *Service) Info(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log.Printf("[INFO] "+format, args...)
}

func (s *Service) Error(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log.Printf("[ERROR] "+format, args...)
}

// LogAudit records a user-visible action; the database audit trail is the
// authoritative record, this is the operator-readable copy.
func (s *Service) LogAudit(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log.Printf("[AUDIT] %s", msg)
}

var GlobalLogger *Service

func SetGlobalLogger(s *Service) {
	GlobalLogger = s
}

// Audit is a nil-safe shorthand for GlobalLogger.LogAudit.
func Audit(msg string) {
	if GlobalLogger != nil {
		GlobalLogger.LogAudit(msg)
	}
}

// Infof is a nil-safe shorthand for GlobalLogger.Info.
func Infof(format string, args ...interface{}) {
	if GlobalLogger != nil {
		GlobalLogger.Info(format, args...)
	}
}

// Errorf is a nil-safe shorthand for GlobalLogger.Error.
func Errorf(format string, args ...interface{}) {
	if GlobalLogger != nil {
		GlobalLogger.Error(format, args...)
	}
}
