package domain

import "strings"

type ResourceKind string

const (
	ResourceKindVirtualMachine ResourceKind = "VirtualMachine"
	ResourceKindManagedDisk    ResourceKind = "ManagedDisk"
)

// ProtectableResource is an inventory item the audit must account for.
// Instances are read-only snapshots built once per run.
type ProtectableResource struct {
	ID            string
	Kind          ResourceKind
	ResourceGroup string
}

// AttachedDisk is a managed disk attached to a virtual machine.
// LUN is -1 for the OS disk, which has no attachment slot.
type AttachedDisk struct {
	ID   string
	Name string
	LUN  int32
}

type VirtualMachine struct {
	ID            string
	Name          string
	ResourceGroup string
	Location      string
	OSDisk        AttachedDisk
	DataDisks     []AttachedDisk
}

// Disks returns the OS disk followed by all data disks.
func (vm VirtualMachine) Disks() []AttachedDisk {
	disks := make([]AttachedDisk, 0, len(vm.DataDisks)+1)
	disks = append(disks, vm.OSDisk)
	disks = append(disks, vm.DataDisks...)
	return disks
}

// NormalizeResourceID lowercases an ARM resource ID so IDs coming from
// different providers compare equal. ARM IDs are case-insensitive.
func NormalizeResourceID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// ResourceGroupOf extracts the resource group segment from a fully qualified
// ARM resource ID. Returns an empty string when the ID has no such segment.
func ResourceGroupOf(resourceID string) string {
	parts := strings.Split(strings.Trim(resourceID, "/"), "/")
	for i := 0; i < len(parts)-1; i++ {
		if strings.EqualFold(parts[i], "resourceGroups") {
			return parts[i+1]
		}
	}
	return ""
}
