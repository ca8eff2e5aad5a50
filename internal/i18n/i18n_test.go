package i18n

import (
	"testing"

	"golang.org/x/text/language"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		in   string
		want language.Tag
	}{
		{"", language.English},
		{"zh", language.Chinese},
		{"zh-CN,zh;q=0.9,en;q=0.8", language.Chinese},
		{"fr-FR,en;q=0.5", language.English},
		{"de", language.English},
		{"not a tag;;", language.English},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Match(tt.in); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLabeler_Operator(t *testing.T) {
	l := NewLabeler()
	tests := []struct {
		tag  language.Tag
		op   string
		want string
	}{
		{language.English, "$regex", "contain (case-insensitive)"},
		{language.English, "$gte", "greater than or equal to"},
		{language.Chinese, "$eq", "等于"},
		{language.Chinese, "$exists", "存在"},
		{language.English, "$nin", "$nin"},
	}
	for _, tt := range tests {
		t.Run(tt.tag.String()+tt.op, func(t *testing.T) {
			if got := l.Operator(tt.tag, tt.op); got != tt.want {
				t.Errorf("Operator(%v, %q) = %q, want %q", tt.tag, tt.op, got, tt.want)
			}
		})
	}
}

func TestLabeler_EveryOperatorHasBothLanguages(t *testing.T) {
	for op, byLang := range operatorLabels {
		for _, tag := range Supported {
			if byLang[tag] == "" {
				t.Errorf("%s has no %v label", op, tag)
			}
		}
	}
}

func TestTitle(t *testing.T) {
	if got := Title(language.English, "greater than"); got != "Greater Than" {
		t.Errorf("Title = %q", got)
	}
}
