package models

// Location is a named physical help point. The deployment ships exactly one
// ("Punto Vuela") but the model supports a set; rows are synced from the
// catalog file at startup.
type Location struct {
	ID   uint    `gorm:"primaryKey" json:"id"`
	Slug string  `gorm:"size:50;unique;not null" json:"slug"`
	Name string  `gorm:"size:100;not null" json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// TableName specifies the table name for GORM
func (Location) TableName() string {
	return "locations"
}
