package shared

import (
	"net"
	"net/http"

	"hrflow/internal/domain/audit"
	"hrflow/internal/requestctx"
)

// ClientIP returns the caller address. chi's RealIP middleware has already
// rewritten RemoteAddr from proxy headers.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// AuditMeta describes the caller of r for the audit trail.
func AuditMeta(r *http.Request) audit.Meta {
	actor := requestctx.GetActor(r.Context())
	return audit.Meta{
		ActorID:   actor.Subject,
		ActorRole: actor.Role,
		RequestID: requestctx.GetRequestID(r.Context()),
		IP:        ClientIP(r),
	}
}
