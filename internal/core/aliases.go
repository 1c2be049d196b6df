package core

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AliasTable holds the normalized header vocabulary for every field.
//
// Aliases drive the first matching phase (substring in either direction).
// Rules drive the second, stricter phase for extended fields: a header
// matches a rule only when it contains every token of that rule.
type AliasTable struct {
	Aliases map[Field][]string
	Rules   map[Field][][]string
}

// DefaultAliases returns the built-in header vocabulary.
func DefaultAliases() AliasTable {
	return AliasTable{
		Aliases: map[Field][]string{
			FieldTeacherID:           {"teacherid", "id", "empid", "employeeid", "staffid", "empcode"},
			FieldTeacherName:         {"teachername", "name", "fullname", "employeename", "staffname"},
			FieldDesignation:         {"designation", "post", "position"},
			FieldDepartment:          {"department", "dept"},
			FieldQualification:       {"qualification", "degree"},
			FieldPayScale:            {"payscale", "scaleofpay", "paylevel"},
			FieldRevisedBasicPay:     {"revisedbasic", "basicpay", "basic", "basicsalary"},
			FieldDA:                  {"da", "dearnessallowance"},
			FieldHRA:                 {"hra", "houserent"},
			FieldCLA:                 {"cla", "citycompensatory"},
			FieldAdditionalAllowance: {"additional", "addl", "specialallowance", "otherallowance"},
			FieldGrossTotal:          {"grosstotal", "gross", "grosssalary", "totalearnings"},
			FieldProfessionalTax:     {"professionaltax", "ptax"},
			FieldIncomeTax:           {"incometax", "tds", "itax"},
			FieldProvidentFund:       {"providentfund", "gpf", "epf", "pf"},
			FieldInsurancePremium:    {"insurance", "lic", "gis", "premium"},
			FieldWelfareFund:         {"welfarefund", "welfare", "swf"},
			FieldTotalDeductions:     {"totaldeductions", "totaldeduction", "deductions"},
			FieldNetPay:              {"netpay", "netsalary", "net", "takehome"},
			FieldPayDate:             {"paydate", "paymentdate"},
			FieldStatus:              {"status", "paymentstatus"},
		},
		Rules: map[Field][][]string{
			FieldOldBasicPay: {{"old", "basic"}, {"pre", "basic"}},
			FieldDAAt150:     {{"da", "150"}},
			FieldHRAAt10:     {{"hra", "10"}},
			FieldDAArrears:   {{"da", "arrear"}},
			FieldPayScaleMin: {{"scale", "min"}},
			FieldPayScaleMax: {{"scale", "max"}},
		},
	}
}

// Merge returns a copy of t with the override aliases and rules appended.
func (t AliasTable) Merge(o AliasTable) AliasTable {
	out := AliasTable{
		Aliases: make(map[Field][]string, len(t.Aliases)),
		Rules:   make(map[Field][][]string, len(t.Rules)),
	}
	for f, list := range t.Aliases {
		out.Aliases[f] = append([]string(nil), list...)
	}
	for f, rules := range t.Rules {
		out.Rules[f] = append([][]string(nil), rules...)
	}
	for f, list := range o.Aliases {
		for _, a := range list {
			if n := NormalizeHeader(a); n != "" {
				out.Aliases[f] = append(out.Aliases[f], n)
			}
		}
	}
	for f, rules := range o.Rules {
		for _, rule := range rules {
			var tokens []string
			for _, tok := range rule {
				if n := NormalizeHeader(tok); n != "" {
					tokens = append(tokens, n)
				}
			}
			if len(tokens) > 0 {
				out.Rules[f] = append(out.Rules[f], tokens)
			}
		}
	}
	return out
}

// aliasFile is the YAML shape of an alias override file.
type aliasFile struct {
	Aliases map[string][]string   `yaml:"aliases"`
	Rules   map[string][][]string `yaml:"rules"`
}

// ParseAliasOverrides decodes YAML alias overrides. Field names must be
// canonical, and rules may only target extended fields.
func ParseAliasOverrides(data []byte) (AliasTable, error) {
	var af aliasFile
	if err := yaml.Unmarshal(data, &af); err != nil {
		return AliasTable{}, fmt.Errorf("parse alias file: %w", err)
	}

	out := AliasTable{
		Aliases: make(map[Field][]string, len(af.Aliases)),
		Rules:   make(map[Field][][]string, len(af.Rules)),
	}
	for name, list := range af.Aliases {
		spec, ok := LookupField(Field(name))
		if !ok {
			return AliasTable{}, fmt.Errorf("alias file: unknown field %q", name)
		}
		if spec.Extended {
			return AliasTable{}, fmt.Errorf("alias file: field %q is matched by rules, not aliases", name)
		}
		out.Aliases[spec.Field] = list
	}
	for name, rules := range af.Rules {
		spec, ok := LookupField(Field(name))
		if !ok {
			return AliasTable{}, fmt.Errorf("alias file: unknown field %q", name)
		}
		if !spec.Extended {
			return AliasTable{}, fmt.Errorf("alias file: field %q is matched by aliases, not rules", name)
		}
		out.Rules[spec.Field] = rules
	}
	return out, nil
}

// LoadAliasFile reads overrides from path and merges them over the defaults.
// An empty path returns the defaults.
func LoadAliasFile(path string) (AliasTable, error) {
	if path == "" {
		return DefaultAliases(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return AliasTable{}, fmt.Errorf("read alias file: %w", err)
	}

	overrides, err := ParseAliasOverrides(data)
	if err != nil {
		return AliasTable{}, err
	}
	return DefaultAliases().Merge(overrides), nil
}
