package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"card-room/internal/config"
	"card-room/internal/logging"
	"card-room/internal/store"
)

type tableView struct {
	TableID      string   `json:"table_id"`
	Phase        string   `json:"phase"`
	HandID       string   `json:"hand_id"`
	TurnUserID   string   `json:"turn_user_id"`
	MyLegal      []string `json:"my_legal_actions"`
	MyConstraint *struct {
		ToCall     int64 `json:"to_call"`
		MinRaiseTo int64 `json:"min_raise_to"`
		MaxRaiseTo int64 `json:"max_raise_to"`
		MaxBet     int64 `json:"max_bet"`
	} `json:"my_constraints"`
}

type client struct {
	base  string
	token string
	http  *http.Client
}

func (c *client) do(method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, e.Error)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	closeLog := logging.Init(logCfg)
	defer closeLog()

	cfg, err := config.LoadBot()
	if err != nil {
		log.Fatal().Err(err).Msg("load bot config failed")
	}

	c := &client{base: cfg.ServerURL, token: cfg.Token, http: &http.Client{Timeout: 10 * time.Second}}

	join := map[string]any{"request_id": store.NewID(), "buy_in": cfg.BuyIn}
	if err := c.do(http.MethodPost, "/api/tables/"+cfg.TableID+"/join", join, nil); err != nil {
		log.Warn().Err(err).Msg("join failed, assuming already seated")
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	poll := time.Duration(cfg.PollEveryMs) * time.Millisecond
	for {
		var view tableView
		if err := c.do(http.MethodGet, "/api/tables/"+cfg.TableID+"/state", nil, &view); err != nil {
			log.Error().Err(err).Msg("state poll failed")
			time.Sleep(poll)
			continue
		}
		if len(view.MyLegal) == 0 {
			time.Sleep(poll)
			continue
		}
		action, amount := decide(rnd, view)
		act := map[string]any{"request_id": store.NewID(), "action": action, "amount": amount}
		if err := c.do(http.MethodPost, "/api/tables/"+cfg.TableID+"/act", act, nil); err != nil {
			log.Error().Err(err).Str("action", action).Msg("act failed")
		} else {
			log.Info().Str("action", action).Int64("amount", amount).Str("hand_id", view.HandID).Msg("acted")
		}
	}
}

func decide(rnd *rand.Rand, v tableView) (string, int64) {
	allowed := map[string]bool{}
	for _, a := range v.MyLegal {
		allowed[a] = true
	}
	cons := v.MyConstraint
	if allowed["check"] {
		if allowed["bet"] && cons != nil && cons.MaxBet > 0 && rnd.Intn(4) == 0 {
			bet := v.bigBlindGuess(cons.MaxBet)
			return "bet", bet
		}
		return "check", 0
	}
	if allowed["call"] {
		if allowed["raise"] && cons != nil && rnd.Intn(8) == 0 {
			return "raise", cons.MinRaiseTo
		}
		return "call", 0
	}
	return "fold", 0
}

// bigBlindGuess picks a small opening bet without knowing the blind size.
func (v tableView) bigBlindGuess(maxBet int64) int64 {
	bet := maxBet / 10
	if bet < 1 {
		bet = 1
	}
	return bet
}
