package models

// Table is an ordered sequence of Rows sharing the canonical schema,
// plus a reference to the sheet it came from.
type Table struct {
	// Source is the workbook path the table was read from.
	Source string
	// Sheet is the sheet name within the workbook.
	Sheet string
	// Rows holds the parsed rows in file order.
	Rows []Row
}
