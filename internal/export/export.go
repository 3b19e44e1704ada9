// Package export renders forecast results as XML documents for the report
// generators that flatten month buckets into tables.
package export

import (
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/idevisu/fincast/internal/models"
)

// ForecastReport builds the XML report for a bucketed forecast
func ForecastReport(buckets []models.MonthBucket, generatedAt time.Time) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("forecast")
	root.CreateAttr("generated_at", generatedAt.Format(time.RFC3339))
	root.CreateAttr("months", strconv.Itoa(len(buckets)))

	for _, b := range buckets {
		m := root.CreateElement("month")
		m.CreateAttr("key", b.Key.String())
		m.CreateAttr("total", b.Total.String())
		for _, o := range b.Entries {
			e := m.CreateElement("obligation")
			e.CreateAttr("source", string(o.Source))
			e.CreateAttr("status", string(o.Status))
			e.CreateAttr("direction", string(o.Direction))
			e.CreateElement("description").SetText(o.Description)
			e.CreateElement("amount").SetText(o.Amount.String())
			e.CreateElement("due_date").SetText(o.DueDate.Format("2006-01-02"))
		}
	}

	doc.Indent(2)
	return doc
}

