package inspector

import (
	"fmt"
	"reflect"
	"strings"
)

// Row is one display line of an inspected component.
type Row struct {
	Label string
	Text  string
	// Fill holds bar fractions in [0, 1]: one per scalar bar, one per
	// element for slice bars. Empty for plain labels.
	Fill []float64
}

// IsBar reports whether the row should be drawn as a bar.
func (r Row) IsBar() bool { return len(r.Fill) > 0 }

// Section groups the rows of one component.
type Section struct {
	Title string
	Rows  []Row
}

// Build inspects a component into a section titled by its type name.
func Build(component any) Section {
	t := reflect.TypeOf(component)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	title := "<nil>"
	if t != nil {
		title = t.Name()
	}
	return Section{Title: title, Rows: Rows(ExtractFields(component))}
}

// BuildAll inspects each component in order.
func BuildAll(components []any) []Section {
	sections := make([]Section, 0, len(components))
	for _, c := range components {
		sections = append(sections, Build(c))
	}
	return sections
}

// Rows converts fields into display rows.
func Rows(fields []Field) []Row {
	rows := make([]Row, 0, len(fields))
	for _, f := range fields {
		row := Row{Label: f.Name}
		fmtStr := f.Options["fmt"]

		switch f.Widget {
		case WidgetBar:
			limit := GetMax(f.Options)
			if vals, ok := GetFloatSlice(f.Value); ok {
				row.Fill = make([]float64, len(vals))
				for i, v := range vals {
					row.Fill[i] = clamp01(v / limit)
				}
				row.Text = fmt.Sprintf("%d values", len(vals))
				break
			}
			if v, ok := GetFloatValue(f.Value); ok {
				row.Fill = []float64{clamp01(v / limit)}
			}
			row.Text = FormatValue(f.Value, fmtStr)
		case WidgetAngle:
			if v, ok := GetFloatValue(f.Value); ok {
				row.Text = FormatAngle(v)
			} else {
				row.Text = FormatValue(f.Value, fmtStr)
			}
		case WidgetBool:
			if b, ok := f.Value.(bool); ok && b {
				row.Text = "yes"
			} else {
				row.Text = "no"
			}
		default:
			row.Text = FormatValue(f.Value, fmtStr)
		}
		rows = append(rows, row)
	}
	return rows
}

func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}

// sparkRunes draw slice bars in text mode, lowest to highest.
var sparkRunes = []rune(" ▁▂▃▄▅▆▇█")

// TextBar renders a scalar fill as a fixed-width bar of '#' and '.'.
func TextBar(fill float64, width int) string {
	n := int(clamp01(fill)*float64(width) + 0.5)
	return strings.Repeat("#", n) + strings.Repeat(".", width-n)
}

// Sparkline renders one block character per fill value.
func Sparkline(fills []float64) string {
	var b strings.Builder
	top := len(sparkRunes) - 1
	for _, f := range fills {
		b.WriteRune(sparkRunes[int(clamp01(f)*float64(top)+0.5)])
	}
	return b.String()
}

// Lines renders sections as plain text, one string per line.
func Lines(sections []Section, labelWidth, barWidth int) []string {
	var lines []string
	for _, s := range sections {
		lines = append(lines, "["+s.Title+"]")
		for _, r := range s.Rows {
			value := r.Text
			switch {
			case len(r.Fill) == 1:
				value = TextBar(r.Fill[0], barWidth) + " " + r.Text
			case len(r.Fill) > 1:
				value = Sparkline(r.Fill)
			}
			lines = append(lines, fmt.Sprintf("  %-*s %s", labelWidth, r.Label, value))
		}
	}
	return lines
}
