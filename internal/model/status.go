package model

// Transition statuses requested by the panel. A row holding one of these is
// awaiting work.
const (
	StatusToAdd            = "toadd"
	StatusToChange         = "tochange"
	StatusToChangePassword = "tochangepwd"
	StatusToEnable         = "toenable"
	StatusToDisable        = "todisable"
	StatusToRestore        = "torestore"
	StatusToDelete         = "todelete"
)

// Terminal statuses written by the engine. A parent must hold one of these
// before its children become eligible.
const (
	StatusOK       = "ok"
	StatusDisabled = "disabled"
	StatusError    = "error"
)

var transitionStatuses = map[string]bool{
	StatusToAdd:            true,
	StatusToChange:         true,
	StatusToChangePassword: true,
	StatusToEnable:         true,
	StatusToDisable:        true,
	StatusToRestore:        true,
	StatusToDelete:         true,
}

// IsTransition reports whether s marks a row as awaiting work.
func IsTransition(s string) bool {
	return transitionStatuses[s]
}

// IsConsistent reports whether s is a parent state under which child rows
// may be provisioned.
func IsConsistent(s string) bool {
	return s == StatusOK || s == StatusDisabled
}
