package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"card-room/internal/game"
	"card-room/internal/store"
	"card-room/internal/table"
)

func healthHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			writeHTTPError(w, http.StatusServiceUnavailable, "db_unreachable")
			return
		}
		writeJSON(w, map[string]any{"status": "ok"})
	}
}

func registerUserHandler(st *store.Store) http.HandlerFunc {
	type request struct {
		Name string `json:"name"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if req.Name == "" {
			writeHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		token := newToken()
		id, err := st.CreateUser(r.Context(), req.Name, token, false)
		if err != nil {
			writeHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, map[string]any{"user_id": id, "name": req.Name, "token": token})
	}
}

func meHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := userFromContext(r.Context())
		writeJSON(w, map[string]any{"user_id": u.ID, "name": u.Name, "is_bot": u.IsBot})
	}
}

func createTableHandler(svc *table.Service) http.HandlerFunc {
	type request struct {
		SmallBlind int64 `json:"small_blind"`
		BigBlind   int64 `json:"big_blind"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		id, err := svc.CreateTable(r.Context(), table.CreateParams{SmallBlind: req.SmallBlind, BigBlind: req.BigBlind})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, map[string]any{"table_id": id})
	}
}

func listTablesHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := st.ListTableIDs(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if ids == nil {
			ids = []string{}
		}
		writeJSON(w, map[string]any{"items": ids})
	}
}

func joinTableHandler(svc *table.Service) http.HandlerFunc {
	type request struct {
		RequestID string `json:"request_id"`
		SeatNo    int    `json:"seat_no"`
		BuyIn     int64  `json:"buy_in"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		u := userFromContext(r.Context())
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if req.RequestID == "" {
			writeHTTPError(w, http.StatusBadRequest, "missing_request_id")
			return
		}
		res, err := svc.Join(r.Context(), table.JoinParams{
			TableID:   chi.URLParam(r, "table_id"),
			UserID:    u.ID,
			RequestID: req.RequestID,
			SeatNo:    req.SeatNo,
			BuyIn:     req.BuyIn,
			IsBot:     u.IsBot,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, res)
	}
}

func leaveTableHandler(svc *table.Service) http.HandlerFunc {
	type request struct {
		RequestID string `json:"request_id"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		u := userFromContext(r.Context())
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if req.RequestID == "" {
			writeHTTPError(w, http.StatusBadRequest, "missing_request_id")
			return
		}
		res, err := svc.Leave(r.Context(), chi.URLParam(r, "table_id"), u.ID, req.RequestID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, res)
	}
}

func startHandHandler(svc *table.Service) http.HandlerFunc {
	type request struct {
		RequestID string `json:"request_id"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		u := userFromContext(r.Context())
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if req.RequestID == "" {
			writeHTTPError(w, http.StatusBadRequest, "missing_request_id")
			return
		}
		res, err := svc.StartHand(r.Context(), chi.URLParam(r, "table_id"), u.ID, req.RequestID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, res)
	}
}

func actHandler(svc *table.Service) http.HandlerFunc {
	type request struct {
		RequestID string `json:"request_id"`
		Action    string `json:"action"`
		Amount    int64  `json:"amount"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		u := userFromContext(r.Context())
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if req.RequestID == "" {
			writeHTTPError(w, http.StatusBadRequest, "missing_request_id")
			return
		}
		res, err := svc.Act(r.Context(), table.ActParams{
			TableID:   chi.URLParam(r, "table_id"),
			UserID:    u.ID,
			RequestID: req.RequestID,
			Action:    game.ActionType(req.Action),
			Amount:    req.Amount,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, res)
	}
}

func heartbeatHandler(svc *table.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := userFromContext(r.Context())
		st, err := svc.Heartbeat(r.Context(), chi.URLParam(r, "table_id"), u.ID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, map[string]any{
			"table_id": st.TableID,
			"phase":    st.Phase,
			"version":  st.Version,
		})
	}
}

func tableStateHandler(svc *table.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := userFromContext(r.Context())
		view, err := svc.View(r.Context(), chi.URLParam(r, "table_id"), u.ID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, view)
	}
}

func holeCardsHandler(svc *table.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := userFromContext(r.Context())
		tableID := chi.URLParam(r, "table_id")
		handID := chi.URLParam(r, "hand_id")
		cards, err := svc.HoleCards(r.Context(), tableID, handID, u.ID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		out := make([]string, 0, len(cards))
		for _, c := range cards {
			out = append(out, c.String())
		}
		writeJSON(w, map[string]any{"hand_id": handID, "cards": out})
	}
}

func depositHandler(st *store.Store) http.HandlerFunc {
	type request struct {
		UserID string `json:"user_id"`
		Amount int64  `json:"amount"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if req.UserID == "" || req.Amount <= 0 {
			writeHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		if _, err := st.GetUserByID(r.Context(), req.UserID); err != nil {
			writeServiceError(w, err)
			return
		}
		acct := store.UserAccount(req.UserID)
		err := st.WithTx(r.Context(), func(tx pgx.Tx) error {
			return st.Transfer(r.Context(), tx, store.TreasuryAccount, acct, req.Amount, "deposit", "user", req.UserID)
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		bal, err := st.GetAccountBalance(r.Context(), acct)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, map[string]any{"account_id": acct, "balance": bal})
	}
}

func addBotHandler(st *store.Store, svc *table.Service) http.HandlerFunc {
	type request struct {
		Name  string `json:"name"`
		BuyIn int64  `json:"buy_in"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if req.Name == "" {
			req.Name = "bot"
		}
		token := newToken()
		botID, err := st.CreateUser(r.Context(), req.Name, token, true)
		if err != nil {
			writeHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		res, err := svc.Join(r.Context(), table.JoinParams{
			TableID:   chi.URLParam(r, "table_id"),
			UserID:    botID,
			RequestID: "bot-join:" + botID,
			BuyIn:     req.BuyIn,
			IsBot:     true,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, map[string]any{
			"user_id": botID,
			"token":   token,
			"seat_no": res.SeatNo,
			"stack":   res.Stack,
		})
	}
}

// releaseRequestHandler drops a pending idempotency claim so the client can
// retry with the same request id. Completed records are never released.
func releaseRequestHandler(st *store.Store) http.HandlerFunc {
	type request struct {
		TableID   string `json:"table_id"`
		UserID    string `json:"user_id"`
		RequestID string `json:"request_id"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if req.TableID == "" || req.UserID == "" || req.RequestID == "" {
			writeHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		if err := st.DeleteActionRequest(r.Context(), req.TableID, req.UserID, req.RequestID); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, map[string]any{"ok": true})
	}
}

func ledgerHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account := r.URL.Query().Get("account")
		if account == "" {
			writeHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		entries, err := st.ListLedgerEntries(r.Context(), account, limit)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, map[string]any{"account_id": account, "entries": entries})
	}
}

func balanceHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := userFromContext(r.Context())
		acct := store.UserAccount(u.ID)
		bal, err := st.GetAccountBalance(r.Context(), acct)
		if errors.Is(err, store.ErrNotFound) {
			bal, err = 0, nil
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, map[string]any{"account_id": acct, "balance": bal})
	}
}

// writeServiceError maps domain errors onto HTTP statuses; the body code is
// the sentinel's own text so clients can switch on it.
func writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "internal_error"
	switch {
	case errors.Is(err, store.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, table.ErrRequestPending):
		status, code = http.StatusConflict, err.Error()
	case errors.Is(err, table.ErrRequestMismatch):
		status, code = http.StatusConflict, err.Error()
	case errors.Is(err, table.ErrStateConflict):
		status, code = http.StatusConflict, err.Error()
	case errors.Is(err, game.ErrContractMismatch):
		// An engine bug, not bad input; the conflict status stops clients
		// from retrying it as if it were correctable.
		status, code = http.StatusConflict, err.Error()
	case errors.Is(err, table.ErrAlreadySeated),
		errors.Is(err, table.ErrNotSeated),
		errors.Is(err, game.ErrSeatTaken),
		errors.Is(err, game.ErrHandInProgress):
		status, code = http.StatusConflict, err.Error()
	case errors.Is(err, store.ErrInsufficientBalance):
		status, code = http.StatusPaymentRequired, err.Error()
	case errors.Is(err, game.ErrInvalidPlayer):
		status, code = http.StatusForbidden, err.Error()
	case errors.Is(err, table.ErrInvalidBuyIn),
		errors.Is(err, game.ErrPlayerLeft),
		errors.Is(err, game.ErrNotYourTurn),
		errors.Is(err, game.ErrActionNotAllowed),
		errors.Is(err, game.ErrInvalidAmount),
		errors.Is(err, game.ErrHandNotStarted),
		errors.Is(err, game.ErrNotEnoughPlayers):
		status, code = http.StatusBadRequest, err.Error()
	}
	writeHTTPError(w, status, code)
}

func newToken() string {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
