package types

// Column names a record store column. The store guarantees the required
// columns exist on load, appending missing ones without removing any.
type Column string

const (
	ColumnClientName    Column = "Client Name"
	ColumnContactNumber Column = "Contact Number"
	ColumnBookedDate    Column = "Booked Date"
	ColumnBookedTime    Column = "Booked Time"
	ColumnStatus        Column = "Status"
	ColumnLastNotified  Column = "Last Notified"
)

// RequiredColumns returns the columns every record store must carry.
func RequiredColumns() []Column {
	return []Column{
		ColumnClientName,
		ColumnContactNumber,
		ColumnBookedDate,
		ColumnBookedTime,
		ColumnStatus,
		ColumnLastNotified,
	}
}

// String returns the string representation of the column
func (c Column) String() string {
	return string(c)
}
