package domain

import "time"

type MachineStatus string

const (
	MachineAvailable MachineStatus = "available"
	MachineBusy      MachineStatus = "busy"
	MachineOffline   MachineStatus = "offline"
)

// Machine is a schedulable work unit. Status is informational only: the
// placement and arrangement algorithms never consult it.
type Machine struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Status    MachineStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	Version   int32         `json:"-"`
}
