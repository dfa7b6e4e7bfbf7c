package console

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/models"
)

const defaultAuditCapacity = 256

// AuditService keeps a bounded in-memory trail of mutating console
// operations and mirrors each entry to the structured log. The trail is a
// session artifact; durable auditing belongs to the server.
type AuditService struct {
	mu       sync.Mutex
	actor    string
	capacity int
	entries  []models.AuditEntry
	logger   *zap.Logger
}

// NewAuditService constructs the audit trail for the given operator.
func NewAuditService(actor string, capacity int, logger *zap.Logger) *AuditService {
	if capacity <= 0 {
		capacity = defaultAuditCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{actor: actor, capacity: capacity, logger: logger}
}

// Record appends one entry, evicting the oldest when full.
func (s *AuditService) Record(action, target, detail string) {
	entry := models.AuditEntry{
		ID:     uuid.New().String(),
		Actor:  s.actor,
		Action: action,
		Target: target,
		Detail: detail,
		At:     time.Now().UTC(),
	}
	s.mu.Lock()
	s.entries = append(s.entries, entry)
	if len(s.entries) > s.capacity {
		s.entries = s.entries[len(s.entries)-s.capacity:]
	}
	s.mu.Unlock()

	s.logger.Info("audit",
		zap.String("action", action),
		zap.String("target", target),
		zap.String("detail", detail),
		zap.String("actor", s.actor),
	)
}

// Recent returns up to n entries, newest first. Non-positive n returns all.
func (s *AuditService) Recent(n int) []models.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 || n > len(s.entries) {
		n = len(s.entries)
	}
	out := make([]models.AuditEntry, 0, n)
	for i := len(s.entries) - 1; i >= len(s.entries)-n; i-- {
		out = append(out, s.entries[i])
	}
	return out
}

// Len reports how many entries the trail currently holds.
func (s *AuditService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
