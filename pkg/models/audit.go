/*
2019 © Postgres.ai
*/

// Package models provides domain entities.
package models

// AuditVerdict represents the result of checking a generated statement against the database schema.
type AuditVerdict struct {
	IsValid      bool   `json:"isValid"`
	Error        string `json:"error"`
	SuggestedFix string `json:"suggestedFix"`
}

// HasFix checks if the verdict carries a corrected statement.
func (v AuditVerdict) HasFix() bool {
	return v.SuggestedFix != ""
}
