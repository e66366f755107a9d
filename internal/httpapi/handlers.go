package httpapi

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/veto-bracket-backend/internal/bracket"
	"github.com/DoyleJ11/veto-bracket-backend/internal/hub"
	"github.com/DoyleJ11/veto-bracket-backend/internal/lobby"
	"github.com/DoyleJ11/veto-bracket-backend/internal/tournament"
	"github.com/DoyleJ11/veto-bracket-backend/internal/types"
	"github.com/DoyleJ11/veto-bracket-backend/internal/veto"
)

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := 0; i < 6; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

type createVetoRequest struct {
	SeriesID  string         `json:"seriesId"`
	Settings  veto.Settings  `json:"settings"`
	Passwords veto.Passwords `json:"passwords"`
}

type vetoView struct {
	Version  int          `json:"version"`
	Session  veto.Session `json:"session"`
	Clients  int          `json:"clients"`
	Deadline *time.Time   `json:"deadline,omitempty"`
}

func CreateVeto(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createVetoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeResult(w, types.FromError(fmt.Errorf("%w: %v", types.ErrBadRequest, err)))
			return
		}

		if req.SeriesID == "" {
			code, err := GenerateCode()
			if err != nil {
				writeResult(w, types.Fail(types.KindInternal, "failed to generate series id"))
				return
			}
			req.SeriesID = code
		}

		passwords := req.Passwords
		if d.HashPasswords {
			hashed, err := veto.HashPasswords(passwords)
			if err != nil {
				writeResult(w, types.Fail(types.KindInternal, "failed to hash passwords"))
				return
			}
			passwords = hashed
		}

		session, err := veto.NewSession(req.SeriesID, req.Settings, passwords)
		if err != nil {
			writeResult(w, types.FromError(err))
			return
		}

		reply := make(chan *lobby.Lobby, 1)
		d.Hub.Inbox() <- hub.CreateLobby{SeriesID: req.SeriesID, Session: session, Reply: reply}
		if <-reply == nil {
			writeResult(w, types.Fail(types.KindConflict, "veto already exists for "+req.SeriesID))
			return
		}

		d.Logger.Info("veto created", zap.String("series_id", req.SeriesID), zap.String("type", string(req.Settings.Type)))
		w.Header().Set("Location", "/vetos/"+req.SeriesID)
		writeResultStatus(w, http.StatusCreated, types.Ok(map[string]string{"seriesId": req.SeriesID}))
	}
}

func GetVeto(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seriesID := chi.URLParam(r, "seriesId")
		lb := d.Hub.Lookup(r.Context(), seriesID)
		if lb == nil {
			writeResult(w, types.Fail(types.KindNotFound, "no veto for "+seriesID))
			return
		}

		reply := make(chan lobby.View, 1)
		if !lb.Send(lobby.GetState{Reply: reply}) {
			writeResult(w, types.Fail(types.KindNotFound, "veto closed"))
			return
		}
		select {
		case v := <-reply:
			writeResult(w, types.Ok(vetoView{Version: v.Version, Session: v.Session, Clients: v.NumClients, Deadline: v.Deadline}))
		case <-r.Context().Done():
		}
	}
}

func DeleteVeto(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seriesID := chi.URLParam(r, "seriesId")
		removed := make(chan bool, 1)
		d.Hub.Inbox() <- hub.RemoveLobby{SeriesID: seriesID, Reply: removed}
		if !<-removed {
			writeResult(w, types.Fail(types.KindNotFound, "no veto for "+seriesID))
			return
		}
		d.Logger.Info("veto removed", zap.String("series_id", seriesID))
		w.WriteHeader(http.StatusNoContent)
	}
}

func ReplaceMatches(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tid := chi.URLParam(r, "tournamentId")

		var matches []bracket.Match
		if err := json.NewDecoder(r.Body).Decode(&matches); err != nil {
			writeResult(w, types.FromError(fmt.Errorf("%w: %v", types.ErrBadRequest, err)))
			return
		}
		seen := make(map[int64]struct{}, len(matches))
		for _, m := range matches {
			if _, dup := seen[m.ID]; dup {
				writeResult(w, types.Fail(types.KindBadRequest, fmt.Sprintf("duplicate match id %d", m.ID)))
				return
			}
			seen[m.ID] = struct{}{}
		}

		_, version, err := d.Tournaments.Replace(r.Context(), tid, matches)
		if err != nil {
			d.Logger.Error("replace matches", zap.String("tournament_id", tid), zap.Error(err))
			writeResult(w, types.FromError(err))
			return
		}
		writeResult(w, types.Ok(map[string]int{"version": version}))
	}
}

func GetBrackets(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := d.Tournaments.Get(r.Context(), chi.URLParam(r, "tournamentId"))
		if err != nil {
			writeResult(w, tournamentError(err))
			return
		}
		writeResult(w, types.Ok(g.View()))
	}
}

func ReportResult(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID, err := strconv.ParseInt(chi.URLParam(r, "matchId"), 10, 64)
		if err != nil {
			writeResult(w, types.Fail(types.KindBadRequest, "match id must be an integer"))
			return
		}

		var res tournament.Result
		if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
			writeResult(w, types.FromError(fmt.Errorf("%w: %v", types.ErrBadRequest, err)))
			return
		}

		g, err := d.Tournaments.Get(r.Context(), chi.URLParam(r, "tournamentId"))
		if err != nil {
			writeResult(w, tournamentError(err))
			return
		}
		diff, err := g.ReportResult(r.Context(), matchID, res)
		if err != nil {
			writeResult(w, types.FromError(err))
			return
		}
		writeResult(w, types.Ok(diff))
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func tournamentError(err error) types.Result {
	if errors.Is(err, tournament.ErrTournamentNotFound) {
		return types.Fail(types.KindNotFound, err.Error())
	}
	return types.FromError(err)
}

func statusFor(res types.Result) int {
	if res.OK {
		return http.StatusOK
	}
	switch res.Kind {
	case types.KindBadRequest, "ValidationError":
		return http.StatusBadRequest
	case types.KindNotFound, bracket.KindMatchNotFound:
		return http.StatusNotFound
	case types.KindConflict:
		return http.StatusConflict
	case bracket.KindCyclicBracket:
		return http.StatusUnprocessableEntity
	case types.KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}

func writeResult(w http.ResponseWriter, res types.Result) {
	writeResultStatus(w, statusFor(res), res)
}

func writeResultStatus(w http.ResponseWriter, status int, res types.Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(res)
}
