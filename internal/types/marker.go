package types

// Marker is a persisted record of a city, its coordinates and an optional
// image, owned by a user email. Markers are immutable once created; the
// database-internal id is never part of this type.
type Marker struct {
	Email     string  `json:"email" validate:"required,email"`
	Ciudad    string  `json:"ciudad" validate:"required"`
	Latitud   float64 `json:"latitud" validate:"min=-90,max=90"`
	Longitud  float64 `json:"longitud" validate:"min=-180,max=180"`
	ImagenURL string  `json:"imagen_url,omitempty"`
}
