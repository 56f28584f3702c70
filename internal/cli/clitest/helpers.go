// Package clitest holds helpers shared by the CLI command tests: an in-memory
// card office served over httptest and a config file writer.
package clitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// Office is a fake card office keyed by register number.
type Office struct {
	URL string

	mu        sync.Mutex
	statuses  map[string]map[string]any
	rejected  map[string]map[string]any
	transfers map[string]int
	failWith  int
}

// NewOffice starts a fake card office; it is shut down when the test ends.
func NewOffice(t *testing.T) *Office {
	t.Helper()
	o := &Office{
		statuses:  map[string]map[string]any{},
		rejected:  map[string]map[string]any{},
		transfers: map[string]int{},
	}
	srv := httptest.NewServer(o.router())
	t.Cleanup(srv.Close)
	o.URL = srv.URL
	return o
}

// SetStatus stores the raw status body returned for reg.
func (o *Office) SetStatus(reg string, body map[string]any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses[reg] = body
}

// SetPrinting makes reg report an approved request being printed.
func (o *Office) SetPrinting(reg string) {
	o.SetStatus(reg, map[string]any{
		"success": true, "status": "approved-printing", "formEnabled": false, "buttonText": "Printing...",
		"details": map[string]any{"isPrinting": true},
	})
}

// SetReady makes reg report a card ready for pickup.
func (o *Office) SetReady(reg string) {
	o.SetStatus(reg, map[string]any{
		"success": true, "status": "ready-pickup", "formEnabled": false, "buttonText": "Ready for pickup",
		"details": map[string]any{"isReadyForPickup": true},
	})
}

// SetRejected stores a rejected card for reg.
func (o *Office) SetRejected(reg, name, reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rejected[reg] = map[string]any{
		"registerNumber":  reg,
		"name":            name,
		"rejectionReason": reason,
		"createdAt":       "2024-02-10T09:15:00Z",
	}
}

// FailWith makes every endpoint answer with code. Zero restores normal service.
func (o *Office) FailWith(code int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failWith = code
}

// Transfers returns how many transfers of kind ("accepted" or "rejected")
// succeeded for reg.
func (o *Office) Transfers(kind, reg string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.transfers[kind+"/"+reg]
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (o *Office) router() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			o.mu.Lock()
			fail := o.failWith
			o.mu.Unlock()
			if fail != 0 {
				writeJSON(w, fail, map[string]any{"success": false, "message": "service unavailable"})
				return
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/api/status/{registerNumber}", func(w http.ResponseWriter, req *http.Request) {
		o.mu.Lock()
		defer o.mu.Unlock()
		body, ok := o.statuses[chi.URLParam(req, "registerNumber")]
		if !ok {
			writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "No existing request"})
			return
		}
		writeJSON(w, http.StatusOK, body)
	})
	r.Get("/api/rejectedidcards/{registerNumber}", func(w http.ResponseWriter, req *http.Request) {
		o.mu.Lock()
		defer o.mu.Unlock()
		card, ok := o.rejected[chi.URLParam(req, "registerNumber")]
		if !ok {
			writeJSON(w, http.StatusOK, map[string]any{"found": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"found": true, "rejectedCard": card})
	})
	transfer := func(kind string) http.HandlerFunc {
		return func(w http.ResponseWriter, req *http.Request) {
			o.mu.Lock()
			defer o.mu.Unlock()
			reg := chi.URLParam(req, "registerNumber")
			switch kind {
			case "rejected":
				if _, ok := o.rejected[reg]; !ok {
					writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "No rejected ID card found"})
					return
				}
				delete(o.rejected, reg)
			case "accepted":
				delete(o.statuses, reg)
			}
			o.transfers[kind+"/"+reg]++
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Transferred", "transferredCount": 1})
		}
	}
	r.Post("/api/acceptedidcards/transfer-to-history/{registerNumber}", transfer("accepted"))
	r.Post("/api/rejectedidcards/transfer-to-history/{registerNumber}", transfer("rejected"))
	return r
}

// ConfigPath writes a cardtrack.yaml pointing at serverURL for reg and
// returns its path. An empty reg leaves the student section out.
func ConfigPath(t *testing.T, serverURL, reg string) string {
	t.Helper()
	lines := []string{
		"server:",
		"  base_url: " + serverURL,
		"  timeout: 2s",
		"polling:",
		"  status_interval: 1s",
		"auth:",
		"  token_env: CARDTRACK_TEST_TOKEN",
	}
	if reg != "" {
		lines = append(lines, "student:", "  register_number: "+reg)
	}
	path := filepath.Join(t.TempDir(), "cardtrack.yaml")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
