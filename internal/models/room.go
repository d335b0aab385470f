package models

// Room is a bookable physical space.
type Room struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
