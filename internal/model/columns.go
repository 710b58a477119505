package model

// Item types.
const (
	ItemPID                 = "PID"
	ItemEquipment           = "Equipment"
	ItemLine                = "Line"
	ItemNonInlineInstrument = "NonInlineInstrument"
)

// Task types.
const (
	TaskRedline = "Redline"
	TaskUPV     = "UPV"
	TaskQC      = "QC"
)

// ReportColumn is one reporting category: a work item type crossed with a
// task type.
type ReportColumn struct {
	Key      string
	ItemType string
	TaskType string
	// WorkedOn names the export field listing the identifiers worked on for
	// this item type. Only one column per item type carries it.
	WorkedOn string
}

// Export field names for the identifier listings.
const (
	WorkedOnPIDs      = "PIDs Worked On"
	WorkedOnEquipment = "Equipment Worked On"
	WorkedOnLines     = "Lines Worked On"
)

var columns = [...]ReportColumn{
	{Key: "Redline PIDs", ItemType: ItemPID, TaskType: TaskRedline, WorkedOn: WorkedOnPIDs},
	{Key: "UPV PIDs", ItemType: ItemPID, TaskType: TaskUPV},
	{Key: "QC PIDs", ItemType: ItemPID, TaskType: TaskQC},
	{Key: "Redline Equipment", ItemType: ItemEquipment, TaskType: TaskRedline, WorkedOn: WorkedOnEquipment},
	{Key: "UPV Equipment", ItemType: ItemEquipment, TaskType: TaskUPV},
	{Key: "Redline Lines", ItemType: ItemLine, TaskType: TaskRedline, WorkedOn: WorkedOnLines},
	{Key: "Redline Non-Inline Instruments", ItemType: ItemNonInlineInstrument, TaskType: TaskRedline},
}

// NumColumns is the size of the column catalog.
const NumColumns = len(columns)

// Columns returns the ordered column catalog. The order defines display and
// export column order. The returned slice is a copy.
func Columns() []ReportColumn {
	out := make([]ReportColumn, len(columns))
	copy(out, columns[:])
	return out
}
