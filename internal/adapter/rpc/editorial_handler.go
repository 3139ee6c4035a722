package rpc

import (
	"encoding/json"
	"net/http"

	"connectrpc.com/authn"
	"connectrpc.com/connect"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/infrastructure/auth"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/usecase"
)

// editorialPrefix is the subtree path the editorial command handler is
// mounted at in the root mux. There is no buf-generated Connect schema
// for this catalog's editorial surface, so commands are exposed as plain
// JSON endpoints over Go's pattern-matching ServeMux rather than through
// connect.NewUnaryHandler.
const editorialPrefix = "/api/v1/events/"

// NewEditorialHandler builds the editorial command surface: six POST
// endpoints, one per EditorialUseCase command. The returned func matches
// server.RPCHandlerFunc's shape so it slots into NewConnectServer's
// handler list alongside any future Connect-generated services; the
// variadic connect.HandlerOption is accepted but unused since these are
// not Connect handlers.
func NewEditorialHandler(uc *usecase.EditorialUseCase) func(opts ...connect.HandlerOption) (string, http.Handler) {
	return func(_ ...connect.HandlerOption) (string, http.Handler) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /api/v1/events/{id}/verify", verifyHandler(uc))
		mux.HandleFunc("POST /api/v1/events/{id}/pin", pinHandler(uc))
		mux.HandleFunc("POST /api/v1/events/{id}/significance", significanceHandler(uc))
		mux.HandleFunc("POST /api/v1/events/{id}/status", statusHandler(uc))
		mux.HandleFunc("POST /api/v1/events/{id}/archive", archiveHandler(uc))
		mux.HandleFunc("POST /api/v1/events/{keepId}/merge/{loseId}", mergeHandler(uc))
		return editorialPrefix, mux
	}
}

// actorFromRequest extracts the authenticated caller's subject claim, set
// by the authn middleware that wraps the protected mux. auth.Claims is
// bridged onto Connect handlers by ClaimsBridgeInterceptor, but these are
// plain http.Handlers so the claim is read directly from authn.GetInfo.
func actorFromRequest(r *http.Request) (string, bool) {
	info := authn.GetInfo(r.Context())
	claims, ok := info.(*auth.Claims)
	if !ok || claims == nil || claims.Sub == "" {
		return "", false
	}
	return claims.Sub, true
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func writeJSONOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func verifyHandler(uc *usecase.EditorialUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFromRequest(r)
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, errMissingActor)
			return
		}
		if err := uc.Verify(r.Context(), r.PathValue("id"), actor); err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}
		writeJSONOK(w)
	}
}

func pinHandler(uc *usecase.EditorialUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFromRequest(r)
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, errMissingActor)
			return
		}
		var body struct {
			Pinned bool `json:"pinned"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}
		if err := uc.Pin(r.Context(), r.PathValue("id"), actor, body.Pinned); err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}
		writeJSONOK(w)
	}
}

func significanceHandler(uc *usecase.EditorialUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFromRequest(r)
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, errMissingActor)
			return
		}
		var body struct {
			Score int `json:"cultural_significance"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}
		if err := uc.SetSignificance(r.Context(), r.PathValue("id"), actor, body.Score); err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}
		writeJSONOK(w)
	}
}

func statusHandler(uc *usecase.EditorialUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFromRequest(r)
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, errMissingActor)
			return
		}
		var body struct {
			Status entity.EventStatus `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}
		if err := uc.UpdateStatus(r.Context(), r.PathValue("id"), actor, body.Status); err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}
		writeJSONOK(w)
	}
}

func archiveHandler(uc *usecase.EditorialUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFromRequest(r)
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, errMissingActor)
			return
		}
		var body struct {
			Reason string `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}
		if err := uc.Archive(r.Context(), r.PathValue("id"), actor, body.Reason); err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}
		writeJSONOK(w)
	}
}

func mergeHandler(uc *usecase.EditorialUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFromRequest(r)
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, errMissingActor)
			return
		}
		if err := uc.Merge(r.Context(), r.PathValue("keepId"), r.PathValue("loseId"), actor); err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}
		writeJSONOK(w)
	}
}

var errMissingActor = jsonErr("missing or unauthenticated actor")

type jsonErr string

func (e jsonErr) Error() string { return string(e) }
