// Command mockregistry is a standalone attestation registry for local
// development. It serves the same wire protocol the gateway's HTTP client
// speaks, seeds its statement table from a CSV and simulates asynchronous
// number issuance: a submitted statement gets its business numbers only
// after a configurable delay.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"eudrgate/internal/platform/httpserver"
	"eudrgate/internal/platform/logger"
)

type statement struct {
	ReferenceNumber    string `json:"referenceNumber"`
	VerificationNumber string `json:"verificationNumber"`
	Status             string `json:"status"`
}

type submission struct {
	identifier   string
	submittedAt  time.Time
	reference    string
	verification string
}

type registry struct {
	mu          sync.Mutex
	statements  map[string]statement // by reference number
	submissions map[string]*submission
	issueDelay  time.Duration
	logger      *slog.Logger
}

func main() {
	addr := flag.String("addr", ":9090", "listen address")
	seed := flag.String("seed", "", "CSV of known statements (referenceNumber,verificationNumber,status)")
	issueDelay := flag.Duration("issue-delay", 10*time.Second, "delay before submitted statements get business numbers")
	flag.Parse()

	log := logger.New()
	reg := &registry{
		statements:  make(map[string]statement),
		submissions: make(map[string]*submission),
		issueDelay:  *issueDelay,
		logger:      log,
	}
	if *seed != "" {
		if err := reg.loadSeed(*seed); err != nil {
			log.Error("seed load failed", "path", *seed, "error", err)
			os.Exit(1)
		}
	}

	r := chi.NewRouter()
	r.Get("/dds/{reference}/{verification}", reg.handleLookup)
	r.Post("/dds/submit", reg.handleSubmit)
	r.Get("/dds/identifier/{identifier}", reg.handleRetrieve)

	log.Info("mock registry listening", "addr", *addr, "statements", len(reg.statements), "issue_delay", *issueDelay)
	srv := httpserver.New(*addr, r)
	if err := srv.ListenAndServe(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// loadSeed reads the statement table. Unknown columns are ignored; a row
// without a status defaults to AVAILABLE.
func (r *registry) loadSeed(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return fmt.Errorf("parse seed csv: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("seed csv is empty")
	}

	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.TrimSpace(name)] = i
	}
	for _, row := range rows[1:] {
		st := statement{
			ReferenceNumber:    cell(row, cols, "referenceNumber"),
			VerificationNumber: cell(row, cols, "verificationNumber"),
			Status:             cell(row, cols, "status"),
		}
		if st.Status == "" {
			st.Status = "AVAILABLE"
		}
		if st.ReferenceNumber != "" {
			r.statements[st.ReferenceNumber] = st
		}
	}
	return nil
}

func cell(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (r *registry) handleLookup(w http.ResponseWriter, req *http.Request) {
	reference := chi.URLParam(req, "reference")
	verification := chi.URLParam(req, "verification")

	r.mu.Lock()
	st, ok := r.statements[reference]
	r.mu.Unlock()
	if !ok || st.VerificationNumber != verification {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (r *registry) handleSubmit(w http.ResponseWriter, req *http.Request) {
	var payload map[string]any
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	sub := &submission{
		identifier:  uuid.NewString(),
		submittedAt: time.Now(),
	}
	r.mu.Lock()
	r.submissions[sub.identifier] = sub
	r.mu.Unlock()

	r.logger.Info("statement submitted", "identifier", sub.identifier)
	writeJSON(w, http.StatusCreated, map[string]string{
		"identifier": sub.identifier,
		"status":     "SUBMITTED",
	})
}

func (r *registry) handleRetrieve(w http.ResponseWriter, req *http.Request) {
	identifier := chi.URLParam(req, "identifier")

	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.submissions[identifier]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if time.Since(sub.submittedAt) < r.issueDelay {
		writeJSON(w, http.StatusOK, map[string]string{"status": "SUBMITTED"})
		return
	}
	if sub.reference == "" {
		compact := strings.ToUpper(strings.ReplaceAll(identifier, "-", ""))
		if len(compact) > 10 {
			compact = compact[:10]
		}
		sub.reference = "25IT" + compact
		sub.verification = "V" + compact[:6]
		r.logger.Info("numbers issued", "identifier", identifier, "reference_number", sub.reference)
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"referenceNumber":    sub.reference,
		"verificationNumber": sub.verification,
		"status":             "AVAILABLE",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
