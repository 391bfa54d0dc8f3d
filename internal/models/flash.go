package models

// FlashKind classifies a post-redirect message.
type FlashKind string

// Flash kinds.
const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Flash is a message shown once on the next render.
type Flash struct {
	Kind    FlashKind `json:"kind"`
	Message string    `json:"message"`
}

// SuccessFlash builds a success message.
func SuccessFlash(message string) *Flash {
	return &Flash{Kind: FlashSuccess, Message: message}
}

// ErrorFlash builds an error message.
func ErrorFlash(message string) *Flash {
	return &Flash{Kind: FlashError, Message: message}
}
