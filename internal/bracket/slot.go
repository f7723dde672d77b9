package bracket

import "github.com/google/uuid"

type SlotState string

const (
	SlotEmpty    SlotState = "empty"
	SlotAwaiting SlotState = "awaiting"
	SlotBye      SlotState = "bye"
	SlotFilled   SlotState = "filled"
)

// Slot is one side of a match. ParticipantID is set only in the filled state.
type Slot struct {
	State         SlotState
	ParticipantID *uuid.UUID
}

func Filled(id uuid.UUID) Slot {
	return Slot{State: SlotFilled, ParticipantID: &id}
}

func Bye() Slot {
	return Slot{State: SlotBye}
}

func Awaiting() Slot {
	return Slot{State: SlotAwaiting}
}

func (s Slot) IsFilled() bool {
	return s.State == SlotFilled && s.ParticipantID != nil
}

func (s Slot) IsBye() bool {
	return s.State == SlotBye
}

// Decided means the slot no longer waits on anything: a participant or a bye.
func (s Slot) Decided() bool {
	return s.IsFilled() || s.IsBye()
}
