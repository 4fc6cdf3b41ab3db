package models

type Part struct {
	ID   int     `json:"id" db:"id"`
	Name string  `json:"name" db:"name"`
	Code *string `json:"code,omitempty" db:"code"`
}

type Operation struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Code string `json:"code" db:"code"`
}

type Section struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Code string `json:"code" db:"code"`
}
