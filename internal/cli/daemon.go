package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/kmorrow/stocklog/internal/config"
	"github.com/kmorrow/stocklog/internal/db"
	"github.com/kmorrow/stocklog/internal/domain"
	"github.com/kmorrow/stocklog/internal/stats"
	"github.com/kmorrow/stocklog/internal/store"
	syncpkg "github.com/kmorrow/stocklog/internal/sync"
)

// DaemonOptions configures the stockd daemon.
type DaemonOptions struct {
	Addr   string
	Unix   string
	Token  string
	DBPath string
}

// ServeDaemon starts the stockd daemon.
func ServeDaemon(opts DaemonOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if opts.DBPath != "" {
		cfg.DBPath = opts.DBPath
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	_, pending, err := database.MigrationStatus()
	if err != nil {
		database.Close()
		return fmt.Errorf("failed to check migration status: %w", err)
	}
	if len(pending) > 0 {
		database.Close()
		return fmt.Errorf("database requires migration: %d pending migration(s). Run 'stocklog db migrate' to update", len(pending))
	}

	server := &daemonServer{
		store: store.New(database),
		token: opts.Token,
	}

	mux := http.NewServeMux()
	server.registerRoutes(mux)

	httpServer := &http.Server{
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	if opts.Unix != "" {
		_ = os.Remove(opts.Unix)
		listener, err := net.Listen("unix", opts.Unix)
		if err != nil {
			database.Close()
			return fmt.Errorf("failed to listen on unix socket: %w", err)
		}
		defer listener.Close()
		return httpServer.Serve(listener)
	}

	addr := opts.Addr
	if addr == "" {
		addr = "127.0.0.1:7270"
	}
	httpServer.Addr = addr

	return httpServer.ListenAndServe()
}

type daemonServer struct {
	store *store.Store
	token string
}

func (s *daemonServer) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/health", s.withAuth(s.handleHealth))

	mux.HandleFunc("/v1/items/list", s.withAuth(s.handleItemsList))
	mux.HandleFunc("/v1/items/get", s.withAuth(s.handleItemsGet))
	mux.HandleFunc("/v1/items/create", s.withAuth(s.handleItemsCreate))
	mux.HandleFunc("/v1/items/rename", s.withAuth(s.handleItemsRename))
	mux.HandleFunc("/v1/items/delete", s.withAuth(s.handleItemsDelete))
	mux.HandleFunc("/v1/items/search", s.withAuth(s.handleItemsSearch))
	mux.HandleFunc("/v1/items/stats", s.withAuth(s.handleItemsStats))

	mux.HandleFunc("/v1/purchases/add", s.withAuth(s.handlePurchasesAdd))
	mux.HandleFunc("/v1/purchases/delete", s.withAuth(s.handlePurchasesDelete))

	mux.HandleFunc("/v1/document/push", s.withAuth(s.handleDocumentPush))
	mux.HandleFunc("/v1/document/export", s.withAuth(s.handleDocumentExport))
}

func (s *daemonServer) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" {
			token := r.Header.Get("Authorization")
			if strings.HasPrefix(token, "Bearer ") {
				token = strings.TrimPrefix(token, "Bearer ")
			}
			if token == "" {
				token = r.Header.Get("X-Stockd-Token")
			}
			if token != s.token {
				s.writeError(w, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
				return
			}
		}

		next(w, r)
	}
}

func (s *daemonServer) decodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	return decoder.Decode(dst)
}

func (s *daemonServer) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeResult wraps every successful response in the uniform shape:
// success flag, payload or null, human-readable message.
func (s *daemonServer) writeResult(w http.ResponseWriter, status int, data interface{}, message string) {
	s.writeJSON(w, status, map[string]interface{}{
		"ok":      true,
		"data":    data,
		"message": message,
	})
}

func (s *daemonServer) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]interface{}{
		"ok":      false,
		"data":    nil,
		"message": err.Error(),
	})
}

// writeStoreError maps store errors onto HTTP statuses.
func (s *daemonServer) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err)
	case errors.Is(err, domain.ErrEmptyName):
		s.writeError(w, http.StatusBadRequest, err)
	default:
		s.writeError(w, http.StatusInternalServerError, err)
	}
}

func (s *daemonServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}

	s.writeResult(w, http.StatusOK, map[string]interface{}{
		"time": time.Now().UTC().Format(time.RFC3339),
	}, "healthy")
}

func (s *daemonServer) handleItemsList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}

	items, err := s.store.Items.List()
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.writeResult(w, http.StatusOK, map[string]interface{}{
		"items": items,
	}, fmt.Sprintf("%d item(s)", len(items)))
}

type itemRequest struct {
	Item string `json:"item"`
}

// resolveItem accepts either an item ID or a name.
func (s *daemonServer) resolveItem(ref string) (*domain.Item, error) {
	return resolveRemoteItem(s.store, ref)
}

func (s *daemonServer) handleItemsGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}

	var req itemRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	item, err := s.resolveItem(req.Item)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.writeResult(w, http.StatusOK, map[string]interface{}{
		"item":  item,
		"stats": stats.Compute(item.Purchases),
	}, item.Name)
}

type itemsCreateRequest struct {
	Name string `json:"name"`
}

func (s *daemonServer) handleItemsCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}

	var req itemsCreateRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	item, created, err := s.store.Items.CreateByName(req.Name)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	status := http.StatusOK
	message := "item already exists"
	if created {
		status = http.StatusCreated
		message = "item created"
	}
	s.writeResult(w, status, map[string]interface{}{
		"item":    item,
		"created": created,
	}, message)
}

type itemsRenameRequest struct {
	Item string `json:"item"`
	Name string `json:"name"`
}

func (s *daemonServer) handleItemsRename(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}

	var req itemsRenameRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	item, err := s.resolveItem(req.Item)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if err := s.store.Items.Rename(item.ID, req.Name); err != nil {
		s.writeStoreError(w, err)
		return
	}

	renamed, err := s.store.Items.Get(item.ID)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeResult(w, http.StatusOK, map[string]interface{}{
		"item": renamed,
	}, "item renamed")
}

func (s *daemonServer) handleItemsDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}

	var req itemRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	item, err := s.resolveItem(req.Item)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if err := s.store.Items.Delete(item.ID); err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.writeResult(w, http.StatusOK, map[string]interface{}{
		"deleted":   item.ID,
		"purchases": len(item.Purchases),
	}, fmt.Sprintf("deleted %s and %d purchase(s)", item.Name, len(item.Purchases)))
}

type itemsSearchRequest struct {
	Query string `json:"query"`
}

func (s *daemonServer) handleItemsSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}

	var req itemsSearchRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	items, err := s.store.Items.Search(req.Query)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.writeResult(w, http.StatusOK, map[string]interface{}{
		"items": items,
	}, fmt.Sprintf("%d match(es)", len(items)))
}

func (s *daemonServer) handleItemsStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}

	var req itemRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	item, err := s.resolveItem(req.Item)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.writeResult(w, http.StatusOK, map[string]interface{}{
		"name":  item.Name,
		"stats": stats.Compute(item.Purchases),
	}, item.Name)
}

type purchasesAddRequest struct {
	Item      string `json:"item"`
	Date      string `json:"date,omitempty"`
	Qty       string `json:"qty,omitempty"`
	UnitPrice string `json:"unit_price,omitempty"`
	Supplier  string `json:"supplier,omitempty"`
}

func (s *daemonServer) handlePurchasesAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}

	var req purchasesAddRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	var date time.Time
	if req.Date != "" {
		parsed, err := domain.ParseDate(req.Date)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		date = parsed
	}

	item, created, err := s.store.Items.CreateByName(req.Item)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	purchase, err := s.store.Purchases.Add(item.ID, store.PurchaseParams{
		Date:      date,
		Qty:       domain.ParseAmount(req.Qty),
		UnitPrice: domain.ParseAmount(req.UnitPrice),
		Supplier:  req.Supplier,
	})
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.writeResult(w, http.StatusCreated, map[string]interface{}{
		"item":         item,
		"item_created": created,
		"purchase":     purchase,
	}, "purchase recorded")
}

type purchasesDeleteRequest struct {
	ID string `json:"id"`
}

func (s *daemonServer) handlePurchasesDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}

	var req purchasesDeleteRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.store.Purchases.Delete(req.ID); err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.writeResult(w, http.StatusOK, map[string]interface{}{
		"deleted": req.ID,
	}, "purchase deleted")
}

func (s *daemonServer) handleDocumentPush(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}

	var doc domain.Document
	if err := s.decodeJSON(r, &doc); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	result := syncpkg.Push(s.store, &doc)

	failures := make([]map[string]string, 0, len(result.Errors))
	for _, itemErr := range result.Errors {
		failures = append(failures, map[string]string{
			"name":  itemErr.Name,
			"error": itemErr.Err.Error(),
		})
	}

	s.writeResult(w, http.StatusOK, map[string]interface{}{
		"items":            result.Items,
		"items_created":    result.ItemsCreated,
		"purchases_pushed": result.PurchasesPushed,
		"succeeded":        result.Succeeded,
		"failed":           result.Failed,
		"failures":         failures,
	}, fmt.Sprintf("synced %d/%d item(s)", result.Succeeded, result.Items))
}

func (s *daemonServer) handleDocumentExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}

	doc, err := s.store.ExportDocument()
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.writeResult(w, http.StatusOK, doc, fmt.Sprintf("%d item(s)", len(doc.Items)))
}
