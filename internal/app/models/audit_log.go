package models

import "time"

// AuditLog is an append-only record of a sensitive action. Rows are never
// mutated after creation and are pruned only by the retention job.
type AuditLog struct {
	ID           int64     `json:"id" db:"id"`
	ActorID      int64     `json:"actorId" db:"actor_id"`
	ActorRole    Role      `json:"actorRole" db:"actor_role"`
	Action       string    `json:"action" db:"action"`
	ResourceType string    `json:"resourceType" db:"resource_type"`
	ResourceID   int64     `json:"resourceId" db:"resource_id"`
	Description  string    `json:"description" db:"description"`
	IPAddress    string    `json:"ipAddress" db:"ip_address"`
	UserAgent    string    `json:"userAgent" db:"user_agent"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
