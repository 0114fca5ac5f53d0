package entity

type Participant struct {
	Base
	Name          string `db:"name"`
	PhoneNumber   string `db:"phone_number"`
	MyKadID       string `db:"mykad_id"`
	PhoneVerified bool   `db:"phone_verified"`
}
