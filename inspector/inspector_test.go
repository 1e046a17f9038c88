package inspector

import (
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/critters/components"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		tag    string
		widget Widget
		opts   map[string]string
	}{
		{"", WidgetAuto, map[string]string{}},
		{"bar", WidgetBar, map[string]string{}},
		{"bar,max:10", WidgetBar, map[string]string{"max": "10"}},
		{"label, fmt:%.1fs", WidgetLabel, map[string]string{"fmt": "%.1fs"}},
		{"skip", WidgetSkip, map[string]string{}},
		{"unknown", WidgetAuto, map[string]string{}},
	}
	for _, tt := range tests {
		widget, opts := ParseTag(tt.tag)
		if widget != tt.widget {
			t.Errorf("ParseTag(%q) widget = %v, want %v", tt.tag, widget, tt.widget)
		}
		if len(opts) != len(tt.opts) {
			t.Errorf("ParseTag(%q) options = %v, want %v", tt.tag, opts, tt.opts)
			continue
		}
		for k, v := range tt.opts {
			if opts[k] != v {
				t.Errorf("ParseTag(%q) option %s = %q, want %q", tt.tag, k, opts[k], v)
			}
		}
	}
}

func rowsByLabel(rows []Row) map[string]Row {
	m := make(map[string]Row, len(rows))
	for _, r := range rows {
		m[r.Label] = r
	}
	return m
}

func TestBuildCreature(t *testing.T) {
	s := Build(components.Creature{Kind: components.Carnivorous, Hunger: 5, Timeout: 1.5, Life: 3})
	if s.Title != "Creature" {
		t.Errorf("title = %q, want Creature", s.Title)
	}
	rows := rowsByLabel(s.Rows)

	if got := rows["Kind"].Text; got != "carnivorous" {
		t.Errorf("Kind = %q, want carnivorous", got)
	}
	hunger := rows["Hunger"]
	if !hunger.IsBar() || math.Abs(hunger.Fill[0]-0.5) > 1e-9 {
		t.Errorf("Hunger fill = %v, want [0.5]", hunger.Fill)
	}
	if hunger.Text != "5.00" {
		t.Errorf("Hunger text = %q, want 5.00", hunger.Text)
	}
	if got := rows["Timeout"].Text; got != "1.5" {
		t.Errorf("Timeout = %q, want 1.5", got)
	}
	if got := rows["Life"].Text; got != "3.0s" {
		t.Errorf("Life = %q, want 3.0s", got)
	}
}

func TestBuildFlattensEmbedded(t *testing.T) {
	s := Build(&components.Position{Vec: r2.Vec{X: 1, Y: -2.5}})
	if s.Title != "Position" {
		t.Errorf("title = %q, want Position", s.Title)
	}
	rows := rowsByLabel(s.Rows)
	if rows["X"].Text != "1.00" || rows["Y"].Text != "-2.50" {
		t.Errorf("rows = %+v", s.Rows)
	}
}

func TestBuildSkipsAndAngles(t *testing.T) {
	body := Build(components.NewBody(4, 2, 0.25))
	rows := rowsByLabel(body.Rows)
	if _, ok := rows["InvMass"]; ok {
		t.Error("InvMass should be skipped")
	}
	if rows["Mass"].Text != "2.000" {
		t.Errorf("Mass = %q, want 2.000", rows["Mass"].Text)
	}

	dir := Build(components.Direction{Angle: -math.Pi / 2})
	if got := dir.Rows[0].Text; got != "270°" {
		t.Errorf("angle = %q, want 270°", got)
	}
}

func TestSliceBars(t *testing.T) {
	s := Build(components.Inputs{Values: []float64{0, 0.5, 1, 2, -1}})
	row := s.Rows[0]
	want := []float64{0, 0.5, 1, 1, 0}
	if len(row.Fill) != len(want) {
		t.Fatalf("fill = %v, want %v", row.Fill, want)
	}
	for i := range want {
		if row.Fill[i] != want[i] {
			t.Errorf("fill[%d] = %f, want %f", i, row.Fill[i], want[i])
		}
	}
	if got := Sparkline(row.Fill); got != " ▄██ " {
		t.Errorf("sparkline = %q", got)
	}
}

func TestTextBar(t *testing.T) {
	tests := []struct {
		fill float64
		want string
	}{
		{0, ".........."},
		{0.5, "#####....."},
		{1, "##########"},
		{3, "##########"},
	}
	for _, tt := range tests {
		if got := TextBar(tt.fill, 10); got != tt.want {
			t.Errorf("TextBar(%f) = %q, want %q", tt.fill, got, tt.want)
		}
	}
}

func TestLines(t *testing.T) {
	sections := BuildAll([]any{
		components.Creature{Kind: components.Vegan, Hunger: 10},
		components.Appearance{},
	})
	lines := Lines(sections, 8, 4)
	if lines[0] != "[Creature]" {
		t.Errorf("first line = %q", lines[0])
	}
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "Hunger   #### 10.00") {
		t.Errorf("missing hunger bar in:\n%s", joined)
	}
	if !strings.Contains(joined, "[Appearance]") {
		t.Errorf("missing appearance section in:\n%s", joined)
	}
}

func TestGetFloatValue(t *testing.T) {
	for _, v := range []any{3, int32(3), uint8(3), float32(3), 3.0, components.Carnivorous * 3} {
		f, ok := GetFloatValue(v)
		if !ok || f != 3 {
			t.Errorf("GetFloatValue(%T %v) = %f, %v", v, v, f, ok)
		}
	}
	if _, ok := GetFloatValue("x"); ok {
		t.Error("string should not convert")
	}
}
