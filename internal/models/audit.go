package models

import "time"

// Audit actions recorded by the application.
const (
	AuditActionLogin          = "LOGIN"
	AuditActionLogout         = "LOGOUT"
	AuditActionPasswordChange = "PASSWORD_CHANGE"
	AuditActionUserCreate     = "USER_CREATE"
	AuditActionUserUpdate     = "USER_UPDATE"
	AuditActionUserDelete     = "USER_DELETE"
	AuditActionClassCreate    = "CLASS_CREATE"
	AuditActionClassJoin      = "CLASS_JOIN"
	AuditActionAssignCreate   = "ASSIGNMENT_CREATE"
)

// AuditLog records a security-relevant action.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"-"`
	UserAgent  string    `db:"user_agent" json:"-"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
