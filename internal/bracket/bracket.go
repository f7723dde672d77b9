package bracket

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusGenerated  Status = "generated"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

type Type string

const (
	SingleElimination Type = "single"
	// Reserved, the builder only produces single elimination trees.
	DoubleElimination Type = "double"
)

type Bracket struct {
	ID          uuid.UUID  `db:"id"`
	CategoryID  uuid.UUID  `db:"category_id"`
	Type        Type       `db:"bracket_type"`
	Size        int        `db:"bracket_size"`
	Status      Status     `db:"status"`
	GeneratedAt *time.Time `db:"generated_at"`
}

func (b *Bracket) TotalRounds() int {
	return TotalRounds(b.Size)
}
