// model/author.go
package model

import "time"

type Author struct {
	ID          int64      `db:"id" json:"id"`
	FirstName   string     `db:"first_name" json:"first_name"`
	LastName    string     `db:"last_name" json:"last_name"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	DateOfDeath *time.Time `db:"date_of_death" json:"date_of_death,omitempty"`
}
