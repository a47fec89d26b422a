package domain

// Skill is a taxonomy tag linked to users via the usuario_habilidad
// join table. The core only reads skills; taxonomy management is an
// external concern.
type Skill struct {
	ID   string
	Name string
}
