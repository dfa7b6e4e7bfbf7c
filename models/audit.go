package models

import "time"

// Audit actions recorded for mutating console operations.
const (
	AuditActionAccountUpdate    = "ACCOUNT_UPDATE"
	AuditActionAccountDelete    = "ACCOUNT_DELETE"
	AuditActionConnectionChange = "CONNECTION_CHANGE"
	AuditActionPasswordReset    = "PASSWORD_RESET"
	AuditActionWelcomeResend    = "WELCOME_RESEND"
	AuditActionBulkSubmit       = "BULK_SUBMIT"
	AuditActionBulkDelete       = "BULK_DELETE"
	AuditActionRoleAssign       = "ROLE_ASSIGN"
	AuditActionGroupChange      = "GROUP_CHANGE"
	AuditActionUploadProcess    = "UPLOAD_PROCESS"
	AuditActionManualAdd        = "MANUAL_ADD"
	AuditActionLinkGenerate     = "LINK_GENERATE"
	AuditActionExport           = "EXPORT"
)

// AuditEntry records one mutating console operation.
type AuditEntry struct {
	ID     string    `json:"id"`
	Actor  string    `json:"actor"`
	Action string    `json:"action"`
	Target string    `json:"target,omitempty"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}
