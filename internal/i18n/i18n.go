// Package i18n localizes user-facing labels. English is the fallback.
package i18n

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Supported lists the label languages, fallback first.
var Supported = []language.Tag{language.English, language.Chinese}

var matcher = language.NewMatcher(Supported)

// Match picks the supported language for an Accept-Language header or a
// bare tag such as "zh". Unparseable input yields English.
func Match(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, i, _ := matcher.Match(tags...)
	return Supported[i]
}

// operatorLabels maps operator keys to their English label and translations.
var operatorLabels = map[string]map[language.Tag]string{
	"$eq":     {language.English: "equal to", language.Chinese: "等于"},
	"$ne":     {language.English: "not equal to", language.Chinese: "不等于"},
	"$regex":  {language.English: "contain (case-insensitive)", language.Chinese: "包含（不区分大小写）"},
	"$in":     {language.English: "in", language.Chinese: "属于"},
	"$gt":     {language.English: "greater than", language.Chinese: "大于"},
	"$gte":    {language.English: "greater than or equal to", language.Chinese: "大于或等于"},
	"$lt":     {language.English: "less than", language.Chinese: "小于"},
	"$lte":    {language.English: "less than or equal to", language.Chinese: "小于或等于"},
	"$exists": {language.English: "exist", language.Chinese: "存在"},
}

// Labeler renders operator labels from a message catalog.
type Labeler struct {
	cat catalog.Catalog
}

// NewLabeler builds the operator label catalog.
func NewLabeler() *Labeler {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, byLang := range operatorLabels {
		for tag, label := range byLang {
			// Keys are operator names; SetString only fails on malformed messages.
			_ = b.SetString(tag, key, label)
		}
	}
	return &Labeler{cat: b}
}

// Operator returns the label for an operator such as "$gte". Unknown
// operators are returned as is.
func (l *Labeler) Operator(tag language.Tag, op string) string {
	if _, ok := operatorLabels[op]; !ok {
		return op
	}
	return message.NewPrinter(tag, message.Catalog(l.cat)).Sprintf(op)
}

// Title capitalizes s following the rules of tag.
func Title(tag language.Tag, s string) string {
	return cases.Title(tag).String(s)
}
