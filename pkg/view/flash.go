package view

type FlashKind string

const (
	FlashInfo    FlashKind = "info"
	FlashSuccess FlashKind = "success"
	FlashWarning FlashKind = "warning"
	FlashError   FlashKind = "error"
)

type Flash struct {
	Kind    FlashKind `json:"kind"`
	Message string    `json:"message"`
}

// Role is the ARIA role for the flash banner; problems interrupt.
func (f Flash) Role() string {
	if f.Kind == FlashError || f.Kind == FlashWarning {
		return "alert"
	}
	return "status"
}
