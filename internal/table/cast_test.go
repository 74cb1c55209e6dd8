package table

import (
	"testing"
	"time"
)

func TestCast(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		field   Field
		want    any
		wantErr bool
	}{
		{"string", "abc", Field{Type: TypeString}, "abc", false},
		{"integer", "42", Field{Type: TypeInteger}, int64(42), false},
		{"integer padded", " -7 ", Field{Type: TypeInteger}, int64(-7), false},
		{"integer bad", "4.2", Field{Type: TypeInteger}, nil, true},
		{"number", "4.25", Field{Type: TypeNumber}, 4.25, false},
		{"number exponent", "1e3", Field{Type: TypeNumber}, 1000.0, false},
		{"number currency", "$5", Field{Type: TypeNumber}, nil, true},
		{"number inf rejected", "inf", Field{Type: TypeNumber}, nil, true},
		{"boolean true", "TRUE", Field{Type: TypeBoolean}, true, false},
		{"boolean zero", "0", Field{Type: TypeBoolean}, false, false},
		{"boolean bad", "yes", Field{Type: TypeBoolean}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Cast(tt.raw, tt.field)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Cast(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Cast(%q) = %#v, want %#v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCast_Dates(t *testing.T) {
	tests := []struct {
		raw    string
		field  Field
		want   time.Time
		wantOK bool
	}{
		{"2024-01-15", Field{Type: TypeDate}, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"01/15/2024", Field{Type: TypeDate}, time.Time{}, false},
		{"01/15/2024", Field{Type: TypeDate, Format: "any"}, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"15.01.2024", Field{Type: TypeDate, Format: "%d.%m.%Y"}, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"2024-01-15T10:30:00Z", Field{Type: TypeDatetime}, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), true},
		{"2024-01-15 10:30", Field{Type: TypeDatetime, Format: "any"}, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Cast(tt.raw, tt.field)
			if (err == nil) != tt.wantOK {
				t.Fatalf("Cast(%q) error = %v, wantOK %v", tt.raw, err, tt.wantOK)
			}
			if tt.wantOK && !got.(time.Time).Equal(tt.want) {
				t.Errorf("Cast(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestInferFields(t *testing.T) {
	names := []string{"id", "price", "flag", "label", "empty", "mixed"}
	rows := [][]string{
		{"1", "1.5", "true", "a", "", "1"},
		{"2", "2", "FALSE", "b", "", "x"},
		{"3", "", "true", "$ 42.50"},
	}

	fields := InferFields(names, rows)
	want := []string{TypeInteger, TypeNumber, TypeBoolean, TypeString, TypeAny, TypeString}
	for i, f := range fields {
		if f.Name != names[i] {
			t.Errorf("field %d name = %q, want %q", i, f.Name, names[i])
		}
		if f.Type != want[i] {
			t.Errorf("field %q type = %q, want %q", f.Name, f.Type, want[i])
		}
	}
}
