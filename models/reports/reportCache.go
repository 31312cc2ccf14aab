package reports

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/paynetra/reports_backend/config"
	"github.com/paynetra/reports_backend/models"
	"github.com/paynetra/reports_backend/utils"
	"github.com/sirupsen/logrus"
)

func reportSlowMs() int64 {
	// Env: REPORT_SLOW_MS (default 500ms)
	ms := int64(500)
	if v := strings.TrimSpace(os.Getenv("REPORT_SLOW_MS")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			ms = n
		}
	}
	return ms
}

func logSlowReport(ctx context.Context, name string, started time.Time, extra map[string]any) {
	d := time.Since(started)
	if d.Milliseconds() < reportSlowMs() {
		return
	}
	clientCode, _ := utils.GetClientCodeFromContext(ctx)
	requestId, _ := utils.GetRequestIdFromContext(ctx)
	config.GetLogger().WithFields(logrus.Fields{
		"report":      name,
		"ms":          d.Milliseconds(),
		"client_code": clientCode,
		"request_id":  requestId,
		"extra":       extra,
	}).Warn("slow report")
}

// cacheParams folds the caller's identity into the request parameters so two
// users with identical query strings never share a cache entry across
// merchant boundaries.
func cacheParams(actor *models.Actor, params map[string]string) map[string]string {
	out := make(map[string]string, len(params)+2)
	for k, v := range params {
		out[k] = v
	}
	out["_client_code"] = actor.ClientCode
	out["_role"] = string(actor.Role)
	return out
}
