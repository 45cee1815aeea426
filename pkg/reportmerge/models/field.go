// Package models defines data structures for report consolidation.
package models

// Field is a canonical column name in the internal schema.
// All input headers are mapped onto these before any processing.
type Field string

const (
	FieldVendor       Field = "vendor"
	FieldCustomerType Field = "customer_type"
	FieldAccount      Field = "account"
	FieldDate         Field = "date"
	FieldProduct      Field = "product"
	FieldAmount       Field = "amount"
	FieldStatus       Field = "status"
	FieldCreditType   Field = "credit_type"
	FieldProductID    Field = "product_id"
	FieldContractID   Field = "contract_id"
)

// Schema is the fixed canonical schema in column order. It is known ahead
// of time and never inferred from input files.
var Schema = []Field{
	FieldVendor,
	FieldCustomerType,
	FieldAccount,
	FieldDate,
	FieldProduct,
	FieldAmount,
	FieldStatus,
	FieldCreditType,
	FieldProductID,
	FieldContractID,
}

// RequiredFields must all resolve against an input header row; a file
// missing any of them cannot be ingested.
var RequiredFields = []Field{
	FieldVendor,
	FieldDate,
	FieldAmount,
}

// DefaultKeyFields is the ordered subset of the schema that forms a
// row's de-duplication identity.
var DefaultKeyFields = []Field{
	FieldAccount,
	FieldDate,
	FieldProduct,
	FieldAmount,
	FieldContractID,
	FieldProductID,
}

// Valid reports whether f belongs to the canonical schema.
func (f Field) Valid() bool {
	for _, s := range Schema {
		if s == f {
			return true
		}
	}
	return false
}
