package domain

import "time"

// User es el agregado raiz: el usuario junto a su coleccion de timers
// se lee y se escribe como una sola unidad.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Timers       []Timer   `json:"timers"`
	Version      int64     `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// FindTimer devuelve un puntero al timer con el id dado, o nil si no existe.
func (u *User) FindTimer(timerID string) *Timer {
	for i := range u.Timers {
		if u.Timers[i].ID == timerID {
			return &u.Timers[i]
		}
	}
	return nil
}
