// Package audit writes the audit_logs trail. Writes are best effort: a
// failed audit insert is logged but never fails the request that caused it.
package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"GestAsd/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Entry struct {
	ActorUserID  string
	Action       string
	TargetUserID string
	Meta         map[string]interface{}
	IP           string
	UserAgent    string
}

// Write inserts one audit row. Errors are swallowed after logging.
func Write(ctx context.Context, pool *pgxpool.Pool, e Entry) {
	metaJSON, err := json.Marshal(e.Meta)
	if err != nil {
		metaJSON = []byte("{}")
	}
	var target interface{}
	if e.TargetUserID != "" {
		target = e.TargetUserID
	}
	_, err = pool.Exec(ctx,
		`INSERT INTO audit_logs (actor_user_id, action, target_user_id, meta, ip, user_agent)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ActorUserID, e.Action, target, metaJSON, e.IP, e.UserAgent,
	)
	if err != nil {
		logger.Errorf("audit write failed for action %s: %v", e.Action, err)
	}
}

// FromRequest fills actor/ip/user-agent from the request and writes the
// entry.
func FromRequest(r *http.Request, pool *pgxpool.Pool, actorID, action, targetUserID string, meta map[string]interface{}) {
	ip := r.RemoteAddr
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip = strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	Write(r.Context(), pool, Entry{
		ActorUserID:  actorID,
		Action:       action,
		TargetUserID: targetUserID,
		Meta:         meta,
		IP:           ip,
		UserAgent:    r.Header.Get("User-Agent"),
	})
	logger.Audit(action + " by " + actorID)
}

// Purge deletes audit rows older than the retention window. Returns the
// number of rows removed.
func Purge(ctx context.Context, pool *pgxpool.Pool, retentionDays int) (int64, error) {
	tag, err := pool.Exec(ctx,
		`DELETE FROM audit_logs WHERE created_at < now() - make_interval(days => $1)`,
		retentionDays,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
