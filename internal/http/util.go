package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"flowcrm-data/internal/domain"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// userFromRequest reads the identity the gateway injects. Team membership
// arrives as a comma separated header; an absent header means no teams,
// which downstream scoping treats as matching nothing.
func userFromRequest(r *http.Request) domain.UserContext {
	user := domain.UserContext{
		UserID:   r.Header.Get("X-User-Id"),
		TenantID: r.Header.Get("X-Tenant-Id"),
		IsAdmin:  strings.EqualFold(r.Header.Get("X-User-Role"), "Admin"),
	}
	if raw := r.Header.Get("X-Team-Ids"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				user.TeamIDs = append(user.TeamIDs, id)
			}
		}
	}
	return user
}
