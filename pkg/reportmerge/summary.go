package reportmerge

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/piramie/reportmerge/pkg/reportmerge/models"
)

// Aggregate names a grouped computation over the value field.
type Aggregate string

const (
	AggSum   Aggregate = "sum"
	AggCount Aggregate = "count"
	// AggCreditSum sums only the rows matching the spec's Credit match.
	AggCreditSum Aggregate = "credit_sum"
	// AggNetSum is the group sum minus the credited sum.
	AggNetSum Aggregate = "net_sum"
)

func (a Aggregate) label() string {
	switch a {
	case AggCreditSum:
		return "CREDITED"
	case AggNetSum:
		return "NET"
	default:
		return strings.ToUpper(string(a))
	}
}

// FieldMatch restricts a summary to rows whose field equals the value,
// compared case- and whitespace-insensitively.
type FieldMatch struct {
	Field models.Field
	Value string
}

// SummarySpec defines one summary view over the master table.
type SummarySpec struct {
	// Name labels the view and its output sheet.
	Name string
	// GroupBy holds the grouping fields; a date field groups by calendar
	// month.
	GroupBy []models.Field
	// ValueField is the field the aggregates run over.
	ValueField models.Field
	// Aggregates are computed per group, one output column each.
	Aggregates []Aggregate
	// Filter, when set, drops non-matching rows before grouping.
	Filter *FieldMatch
	// Credit, when set, marks matching rows as credited; AggCreditSum and
	// AggNetSum split each group's sum against it in the same view.
	Credit *FieldMatch
}

// DefaultSummarySpecs returns the stock views: vendor totals with the
// API-credited amount split out and the net remainder alongside, and the
// same breakdown per calendar month.
func DefaultSummarySpecs() []SummarySpec {
	credited := &FieldMatch{Field: models.FieldCreditType, Value: "encisia"}
	return []SummarySpec{
		{
			Name:       "Totals by Vendor",
			GroupBy:    []models.Field{models.FieldVendor},
			ValueField: models.FieldAmount,
			Aggregates: []Aggregate{AggCount, AggSum, AggCreditSum, AggNetSum},
			Credit:     credited,
		},
		{
			Name:       "Vendor by Month",
			GroupBy:    []models.Field{models.FieldVendor, models.FieldDate},
			ValueField: models.FieldAmount,
			Aggregates: []Aggregate{AggSum, AggCount, AggCreditSum, AggNetSum},
			Credit:     credited,
		},
	}
}

// SummaryIter lazily yields one SummaryTable per spec. Each table is
// computed from the given master snapshot on the Next call that reaches
// it; the iterator is finite and not restartable, and nothing is cached
// across Summaries calls.
type SummaryIter struct {
	table *models.Table
	specs []SummarySpec
	pos   int
}

// Summaries returns an iterator over the summary views of table. A nil
// specs slice selects DefaultSummarySpecs.
func Summaries(table *models.Table, specs []SummarySpec) *SummaryIter {
	if specs == nil {
		specs = DefaultSummarySpecs()
	}
	return &SummaryIter{table: table, specs: specs}
}

// Next computes and returns the next summary table, or false when the
// sequence is exhausted.
func (it *SummaryIter) Next() (*models.SummaryTable, bool) {
	if it.pos >= len(it.specs) {
		return nil, false
	}
	spec := it.specs[it.pos]
	it.pos++
	return buildSummary(it.table, spec), true
}

const monthLayout = "2006-01"

type group struct {
	labels []any
	count  int
	sum    decimal.Decimal
	credit decimal.Decimal
}

func buildSummary(table *models.Table, spec SummarySpec) *models.SummaryTable {
	// first-seen insertion order: ordered slice plus an index, never a
	// bare map
	var order []*group
	index := make(map[string]*group)

	for _, row := range table.Rows {
		if spec.Filter != nil && !matches(row, *spec.Filter) {
			continue
		}

		key, labels := groupKey(row, spec.GroupBy)
		g, ok := index[key]
		if !ok {
			g = &group{labels: labels}
			index[key] = g
			order = append(order, g)
		}

		g.count++
		if d, ok := row.Amount(spec.ValueField); ok {
			g.sum = g.sum.Add(d)
			if spec.Credit != nil && matches(row, *spec.Credit) {
				g.credit = g.credit.Add(d)
			}
		}
	}

	out := &models.SummaryTable{Name: spec.Name}
	for _, f := range spec.GroupBy {
		if f == models.FieldDate {
			out.Columns = append(out.Columns, "MONTH")
			continue
		}
		out.Columns = append(out.Columns, strings.ToUpper(string(f)))
	}
	for _, agg := range spec.Aggregates {
		out.Columns = append(out.Columns, agg.label())
	}

	for _, g := range order {
		row := make([]any, 0, len(g.labels)+len(spec.Aggregates))
		row = append(row, g.labels...)
		for _, agg := range spec.Aggregates {
			switch agg {
			case AggCount:
				row = append(row, g.count)
			case AggSum:
				row = append(row, g.sum)
			case AggCreditSum:
				row = append(row, g.credit)
			case AggNetSum:
				row = append(row, g.sum.Sub(g.credit))
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// groupKey derives a row's group identity and display labels. Text
// compares case- and whitespace-insensitively; the first-seen spelling
// becomes the label. Dates collapse to their calendar month.
func groupKey(row models.Row, fields []models.Field) (string, []any) {
	keyParts := make([]string, 0, len(fields))
	labels := make([]any, 0, len(fields))
	for _, f := range fields {
		if f == models.FieldDate {
			if t, ok := row.Time(f); ok {
				month := t.Format(monthLayout)
				keyParts = append(keyParts, month)
				labels = append(labels, month)
			} else {
				keyParts = append(keyParts, "")
				labels = append(labels, "")
			}
			continue
		}
		text := strings.TrimSpace(row.Text(f))
		keyParts = append(keyParts, strings.ToUpper(strings.Join(strings.Fields(text), " ")))
		labels = append(labels, text)
	}
	return strings.Join(keyParts, "\x1f"), labels
}

func matches(row models.Row, m FieldMatch) bool {
	have := strings.ToUpper(strings.Join(strings.Fields(row.Text(m.Field)), " "))
	want := strings.ToUpper(strings.Join(strings.Fields(m.Value), " "))
	return have == want
}
