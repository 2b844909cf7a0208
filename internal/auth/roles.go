package auth

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RoleClass is the canonical permission category behind a free-text role label.
type RoleClass string

const (
	RoleAdmin        RoleClass = "ADMIN"
	RoleProducer     RoleClass = "PRODUCER"
	RoleLeader       RoleClass = "LEADER"
	RoleReception    RoleClass = "RECEPTION"
	RoleCollaborator RoleClass = "COLLABORATOR"
)

var roleTable = map[string]RoleClass{
	"admin":     RoleAdmin,
	"pastor":    RoleAdmin,
	"pastora":   RoleAdmin,
	"productor": RoleProducer,
	"producer":  RoleProducer,
	"lider":     RoleLeader,
	"leader":    RoleLeader,
	"recepcion": RoleReception,
	"reception": RoleReception,
}

// NormalizeRole trims, strips diacritics and lower-cases a role label.
func NormalizeRole(raw string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.TrimSpace(raw))
	if err != nil {
		folded = strings.TrimSpace(raw)
	}
	return strings.ToLower(folded)
}

// Classify maps a role label to its RoleClass. Unknown labels are collaborators.
func Classify(raw string) RoleClass {
	if class, ok := roleTable[NormalizeRole(raw)]; ok {
		return class
	}
	return RoleCollaborator
}

// CanManageServices reports whether the role may mutate scheduling data.
func CanManageServices(raw string) bool {
	switch Classify(raw) {
	case RoleAdmin, RoleProducer:
		return true
	default:
		return false
	}
}
