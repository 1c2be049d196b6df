package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseAliasOverrides(t *testing.T) {
	data := []byte(`
aliases:
  teacherId: ["Faculty Code"]
  netPay: ["amount credited"]
rules:
  daArrears:
    - ["dearness", "arrear"]
`)
	o, err := ParseAliasOverrides(data)
	if err != nil {
		t.Fatalf("ParseAliasOverrides() error = %v", err)
	}
	table := DefaultAliases().Merge(o)

	res := table.Resolve([]string{"Faculty Code", "Faculty Name", "Basic", "Dearness Arrear", "Amount Credited"})

	tests := []struct {
		field Field
		want  int
	}{
		{FieldTeacherID, 0},
		{FieldTeacherName, 1},
		{FieldDAArrears, 3},
		{FieldNetPay, 4},
	}
	for _, tt := range tests {
		if got, ok := res.Mapping[tt.field]; !ok || got != tt.want {
			t.Errorf("field %s -> %d (mapped %v), want %d", tt.field, got, ok, tt.want)
		}
	}
}

func TestParseAliasOverrides_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{name: "unknown alias field", data: "aliases:\n  salary: [pay]\n", wantErr: "unknown field"},
		{name: "unknown rule field", data: "rules:\n  bonus: [[a, b]]\n", wantErr: "unknown field"},
		{name: "alias for extended field", data: "aliases:\n  daAt150: [da150]\n", wantErr: "matched by rules"},
		{name: "rule for primary field", data: "rules:\n  netPay: [[net, pay]]\n", wantErr: "matched by aliases"},
		{name: "malformed yaml", data: "aliases: [", wantErr: "parse alias file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAliasOverrides([]byte(tt.data))
			if err == nil {
				t.Fatal("ParseAliasOverrides() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestMerge_DoesNotMutateDefaults(t *testing.T) {
	base := DefaultAliases()
	before := len(base.Aliases[FieldTeacherID])

	_ = base.Merge(AliasTable{Aliases: map[Field][]string{FieldTeacherID: {"Badge No"}}})

	if got := len(base.Aliases[FieldTeacherID]); got != before {
		t.Errorf("base aliases grew to %d, want %d", got, before)
	}
}

func TestLoadAliasFile(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		table, err := LoadAliasFile("")
		if err != nil {
			t.Fatalf("LoadAliasFile() error = %v", err)
		}
		if len(table.Aliases) != len(DefaultAliases().Aliases) {
			t.Errorf("aliases = %d fields, want defaults", len(table.Aliases))
		}
	})

	t.Run("file merged over defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "aliases.yaml")
		if err := os.WriteFile(path, []byte("aliases:\n  teacherName: [\"Lecturer\"]\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		table, err := LoadAliasFile(path)
		if err != nil {
			t.Fatalf("LoadAliasFile() error = %v", err)
		}
		res := table.Resolve([]string{"Teacher ID", "Lecturer", "Basic"})
		if got := res.Mapping[FieldTeacherName]; got != 1 {
			t.Errorf("teacherName -> %d, want 1", got)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadAliasFile(filepath.Join(t.TempDir(), "nope.yaml"))
		if err == nil {
			t.Fatal("LoadAliasFile() expected error for missing file")
		}
	})
}
