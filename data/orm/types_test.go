package orm

import (
	"fmt"
	"strings"
	"time"
)

type Person struct {
	ID        int64  `orm:"id;reuse"`
	FirstName string `orm:"column:first_name;size:64"`
	LastName  string `orm:"column:last_name"`
	Age       int    `orm:"default:0"`
	Score     float64
	Active    bool
	Avatar    []byte
	Born      time.Time
	Nickname  *string
	Friends   []string `orm:"assoc:one_to_many;target:Person"`
	Scratch   string   `orm:"-"`
	internal  string
}

func (Person) TableName() string { return "person" }

type Account struct {
	id    int64
	email string
	Notes string
}

func (a *Account) GetId() int64       { return a.id }
func (a *Account) SetId(v int64)      { a.id = v }
func (a *Account) GetEmail() string   { return a.email }
func (a *Account) SetEmail(v string)  { a.email = v }
func (a *Account) IsVerified() bool   { return a.email != "" }
func (a *Account) GetClass() string   { return "Account" }
func (a *Account) GetSummary() string { return a.email + a.Notes }
func (a *Account) SetSummary(v int)   {}

func (a *Account) PropertyTags() map[string]string {
	return map[string]string{
		"id":    "identity;enforce:false",
		"email": "column:mail;size:128",
	}
}

type Shouting struct {
	Name string `orm:"column:field_name"`
}

func (s *Shouting) GetName() string  { return strings.ToUpper(s.Name) }
func (s *Shouting) SetName(v string) { s.Name = strings.ToLower(v) }

type Explicit struct {
	ID   int64
	Code string `orm:"identity;enforce:false"`
}

type Fallback struct {
	ID   int64
	Name string
}

type Address struct {
	City string
	Zip  string `orm:"column:postcode"`
}

type Customer struct {
	ID      int64
	Address Address `orm:"embed"`
}

type Audit struct {
	CreatedAt time.Time
	UpdatedBy string
}

type Order struct {
	Audit
	ID    int64
	Total float64
}

type Coded struct {
	Code     string `orm:"column:c_code"`
	CodeName string `orm:"column:code_name"`
}

type Color int

type BadTag struct {
	Name string `orm:"colour:red"`
}

type DuplicateColumns struct {
	A string `orm:"column:same"`
	B string `orm:"column:same"`
}

type Wide struct {
	ID    uint64 `orm:"id"`
	Small int8
	Ratio float32
	At    Point
}

type Point struct {
	X, Y int
}

func (p Point) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("%d,%d", p.X, p.Y)), nil
}

func (p *Point) UnmarshalText(b []byte) error {
	_, err := fmt.Sscanf(string(b), "%d,%d", &p.X, &p.Y)
	return err
}
