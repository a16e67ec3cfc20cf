package domain

import "time"

const (
	TimerStatusActive  = "active"
	TimerStatusDeleted = "deleted"
)

// Timer pertenece a exactamente un usuario; se borra via soft delete,
// nunca se elimina de la coleccion.
type Timer struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	TargetDate  time.Time  `json:"targetDate"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
}

// IsDeleted indica si el timer fue marcado como borrado.
func (t *Timer) IsDeleted() bool {
	return t.Status == TimerStatusDeleted
}
