// model/instance.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type InstanceStatus string

const (
	StatusMaintenance InstanceStatus = "MAINTENANCE"
	StatusOnLoan      InstanceStatus = "ON_LOAN"
	StatusAvailable   InstanceStatus = "AVAILABLE"
	StatusReserved    InstanceStatus = "RESERVED"
)

// BookInstance is a loanable physical copy of a Book. Copies are keyed
// by UUID so ids stay unguessable. DueBack and BorrowerID are set while
// the copy is out on loan.
type BookInstance struct {
	ID         uuid.UUID      `db:"id" json:"id"`
	BookID     int64          `db:"book_id" json:"book_id"`
	Imprint    string         `db:"imprint" json:"imprint"`
	Status     InstanceStatus `db:"status" json:"status"`
	DueBack    *time.Time     `db:"due_back" json:"due_back,omitempty"`
	BorrowerID *int64         `db:"borrower_id" json:"borrower_id,omitempty"`
}
